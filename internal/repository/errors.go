package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/event-booking/internal/service"
)

// MySQL error number for a unique key violation.
const errDupEntry = 1062

// mapWriteErr turns a duplicate-key error into service.ErrDuplicate and
// leaves every other error untouched.
func mapWriteErr(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == errDupEntry {
		return service.ErrDuplicate
	}
	return err
}
