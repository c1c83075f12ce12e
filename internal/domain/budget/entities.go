package budget

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// Table: budget_codes. A sub-allocation of a department budget. Code is
// unique within its department only: departments whose names share a prefix
// produce the same code text.
type Code struct {
	ID           uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	EntityID     uint64          `gorm:"column:entity_id;not null;index" json:"entity_id"`
	DepartmentID uint64          `gorm:"column:department_id;not null;index;uniqueIndex:ux_budget_codes_department_code" json:"department_id"`
	Code         string          `gorm:"column:code;size:20;not null;uniqueIndex:ux_budget_codes_department_code" json:"code"`
	BudgetLimit  decimal.Decimal `gorm:"column:budget_limit;type:decimal(18,2);not null" json:"budget_limit"`
	Description  string          `gorm:"column:description;type:text" json:"description"`
	Status       string          `gorm:"column:status;size:20;not null;default:active" json:"status"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Code) TableName() string { return "budget_codes" }

// Prefix strips whitespace from name, upper-cases it and keeps the first n runes.
func Prefix(name string, n int) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	rs := []rune(b.String())
	if len(rs) > n {
		rs = rs[:n]
	}
	return string(rs)
}

// FormatCode renders <ENTITY2>-<DEPT3>-<seq3>.
func FormatCode(entityName, departmentName string, seq int) string {
	return fmt.Sprintf("%s-%s-%03d", Prefix(entityName, 2), Prefix(departmentName, 3), seq)
}

var reTrailingDigits = regexp.MustCompile(`(\d+)$`)

// NextSequence parses the numeric suffix of the last issued code and adds one.
// An empty or unparsable code starts the sequence at 1.
func NextSequence(lastCode string) int {
	m := reTrailingDigits.FindStringSubmatch(strings.TrimSpace(lastCode))
	if m == nil {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 1
	}
	return n + 1
}
