package schema

import "fmt"

// Migration is a named transition between two schema versions. From must
// equal the database's persisted version at apply time, else the migration
// is rejected.
type Migration struct {
	From int    `yaml:"from"`
	To   int    `yaml:"to"`
	SQL  string `yaml:"sql"`
}

// Steps is an ordered migration chain.
type Steps []Migration

// Validate checks that the chain is well formed: every step moves forward
// (From < To, versions non-negative) and consecutive steps are contiguous
// (each step starts at the version the previous one produced).
func (s Steps) Validate() error {
	for i, m := range s {
		if m.From < 0 {
			return fmt.Errorf("migration %d: from version %d is negative", i, m.From)
		}
		if m.To <= m.From {
			return fmt.Errorf("migration %d: to version %d must exceed from version %d", i, m.To, m.From)
		}
		if m.SQL == "" {
			return fmt.Errorf("migration %d (%d -> %d): sql is empty", i, m.From, m.To)
		}
		if i > 0 && m.From != s[i-1].To {
			return fmt.Errorf("migration %d: from version %d does not continue previous step ending at %d",
				i, m.From, s[i-1].To)
		}
	}
	return nil
}

// Range returns the versions the chain migrates between. Zero values for an
// empty chain.
func (s Steps) Range() (from, to int) {
	if len(s) == 0 {
		return 0, 0
	}
	return s[0].From, s[len(s)-1].To
}
