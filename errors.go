package stage

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var (
	ErrInvalidDriverType = errors.New("invalid driver type")
	ErrDeadHandle        = errors.New("dead handle")
	ErrDetached          = errors.New("component detached")
	ErrAlreadyAttached   = errors.New("component already attached")
	ErrMustPointer       = errors.New("component must be a pointer")
	ErrUnknownScene      = errors.New("unknown scene")
	ErrNotFound          = errors.New("not found")
)

func CheckDuplicate(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}

	return false
}

func CheckNotFound(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true
	}

	return err.Error() == "record not found"
}
