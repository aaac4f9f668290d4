package repository

import (
	"github.com/isati-sh/daycare-sub001/internal/database"
	"github.com/isati-sh/daycare-sub001/internal/service"
)

// NewStore wires every SQL repository onto one connection or transaction
func NewStore(db database.DBTX) service.Store {
	return service.Store{
		Accounts:          NewAccountRepository(db),
		Children:          NewChildRepository(db),
		EmergencyContacts: NewEmergencyContactRepository(db),
		DailyLogs:         NewDailyLogRepository(db),
	}
}
