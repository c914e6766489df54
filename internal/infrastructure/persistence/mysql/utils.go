package mysql

import (
	"errors"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// erDupEntry MySQL唯一索引冲突(Duplicate entry 'x' for key 'y')
const erDupEntry = 1062

func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysqldriver.MySQLError
	return errors.As(err, &myErr) && myErr.Number == erDupEntry
}

// translateCreateError 唯一索引冲突转换为领域错误，其他错误原样返回
func translateCreateError(err, onDuplicate error) error {
	if isDuplicateError(err) {
		return onDuplicate
	}
	return err
}
