package sqlite

import (
	"database/sql/driver"
	"fmt"

	sqlitedriver "modernc.org/sqlite"

	"github.com/larderapp/larder-server/internal/util"
)

// foldFunc is the SQL name of the Unicode case fold used for text search and
// name ordering. SQLite's LIKE and NOCASE only fold ASCII.
const foldFunc = "fold"

func init() {
	sqlitedriver.MustRegisterDeterministicScalarFunction(foldFunc, 1, sqlFold)
}

// sqlFold implements fold(text). NULL stays NULL.
func sqlFold(_ *sqlitedriver.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return util.Fold(v), nil
	case []byte:
		return util.Fold(string(v)), nil
	default:
		return nil, fmt.Errorf("fold: unsupported argument type %T", v)
	}
}
