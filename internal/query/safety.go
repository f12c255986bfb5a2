package query

import (
	"fmt"
	"strings"
)

// SchemaName is the only namespace queries may touch.
const SchemaName = "tas_demo"

// forbiddenKeywords are write/DDL verbs never allowed in a query, whether the
// query came from the registry or from the model resolver.
var forbiddenKeywords = []string{
	"DROP", "DELETE", "INSERT", "UPDATE", "ALTER", "CREATE", "TRUNCATE", "GRANT", "REVOKE",
}

// ValidateReadOnly rejects anything that is not a plain read query. It is the
// single gate both the executor and the interpreter's fallback path go through.
func ValidateReadOnly(sql string) error {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return fmt.Errorf("empty query")
	}
	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return fmt.Errorf("only SELECT queries are allowed")
	}
	for _, kw := range forbiddenKeywords {
		if containsKeyword(upper, kw) {
			return fmt.Errorf("query contains forbidden keyword: %s", kw)
		}
	}
	return nil
}

// containsKeyword matches kw as a whole word so column names like
// "created_date" do not trip the CREATE check.
func containsKeyword(upper, kw string) bool {
	idx := 0
	for {
		i := strings.Index(upper[idx:], kw)
		if i < 0 {
			return false
		}
		i += idx
		before := i == 0 || !isWordChar(upper[i-1])
		afterIdx := i + len(kw)
		after := afterIdx >= len(upper) || !isWordChar(upper[afterIdx])
		if before && after {
			return true
		}
		idx = i + len(kw)
	}
}

func isWordChar(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
