package firestore

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/exp/constraints"
)

// IDKey formats an integer id as the map key or document id it is stored under.
func IDKey[T constraints.Integer](id T) string {
	return strconv.FormatInt(int64(id), 10)
}

// SortedKeys returns the keys of m in ascending numeric order, with non-numeric keys last in lexical order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		}
		return keys[i] < keys[j]
	})
	return keys
}

func treeElement(name string, indent int, last bool) string {
	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", indent))
	if last {
		sb.WriteRune('└')
	} else {
		sb.WriteRune('├')
	}
	sb.WriteString(fmt.Sprintf(" %s", name))
	return sb.String()
}

func treeString(name string, indent int, last bool, value string) string {
	return treeElement(name, indent, last) + ": " + value
}

func treeBool(name string, indent int, last bool, value bool) string {
	return treeElement(name, indent, last) + fmt.Sprintf(": %t", value)
}

func treeBoolPtr(name string, indent int, last bool, value *bool, def bool) string {
	if value == nil {
		return treeElement(name, indent, last) + fmt.Sprintf(": %t (default)", def)
	}
	return treeBool(name, indent, last, *value)
}

func treeInt(name string, indent int, last bool, value int) string {
	return treeElement(name, indent, last) + fmt.Sprintf(": %d", value)
}

func treeIntPtr(name string, indent int, last bool, value *int) string {
	if value == nil {
		return treeElement(name, indent, last) + ": <nil>"
	}
	return treeInt(name, indent, last, *value)
}

func treeTime(name string, indent int, last bool, value time.Time) string {
	if value.IsZero() {
		return treeElement(name, indent, last) + ": <unset>"
	}
	return treeElement(name, indent, last) + ": " + value.Format(time.RFC3339)
}
