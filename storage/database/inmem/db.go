package inmemdb

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/bulletin/core"
	"github.com/trezcool/bulletin/core/class"
	"github.com/trezcool/bulletin/core/grade"
	"github.com/trezcool/bulletin/core/user"
)

// DB keeps every table in memory behind one RWMutex.
type DB struct {
	mu        sync.RWMutex
	users     map[string]*user.User
	classes   map[string]*class.SchoolClass
	templates map[string]*class.Template
	grades    map[string]*grade.Entry
}

func NewDB() *DB {
	return &DB{
		users:     make(map[string]*user.User),
		classes:   make(map[string]*class.SchoolClass),
		templates: make(map[string]*class.Template),
		grades:    make(map[string]*grade.Entry),
	}
}

// Reset empties every table.
func (db *DB) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users = make(map[string]*user.User)
	db.classes = make(map[string]*class.SchoolClass)
	db.templates = make(map[string]*class.Template)
	db.grades = make(map[string]*grade.Entry)
}

func newID() string {
	return uuid.New().String()
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append(make([]string, 0, len(s)), s...)
}

// compare returns -1, 0 or 1. It understands the value types of the stored records.
func compare(a, b interface{}) int {
	switch x := a.(type) {
	case string:
		return strings.Compare(x, b.(string))
	case float64:
		y := b.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	case int:
		y := b.(int)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	case time.Time:
		y := b.(time.Time)
		switch {
		case x.Before(y):
			return -1
		case x.After(y):
			return 1
		}
	}
	return 0
}

// orderBy sorts `slice` in the given ordering. `field` reads the value of a column of the i-th element.
func orderBy(slice interface{}, field func(i int, column string) interface{}, ordering []core.DBOrdering) {
	sort.SliceStable(slice, func(i, j int) bool {
		for _, ord := range ordering {
			c := compare(field(i, ord.Field), field(j, ord.Field))
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}
