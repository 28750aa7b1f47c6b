package notify

import (
	"sort"
	"strings"
)

// SetBuilder accumulates addresses, dropping blanks and duplicates. Emails
// compare case-insensitively and are stored lower-cased. People are tracked
// separately from addresses so one person reachable on three channels still
// counts once.
type SetBuilder struct {
	emails  map[string]struct{}
	phones  map[string]struct{}
	userIDs map[string]struct{}
	people  map[string]struct{}
}

func NewSetBuilder() *SetBuilder {
	return &SetBuilder{
		emails:  make(map[string]struct{}),
		phones:  make(map[string]struct{}),
		userIDs: make(map[string]struct{}),
		people:  make(map[string]struct{}),
	}
}

func (b *SetBuilder) AddEmail(email string) {
	if e := strings.ToLower(strings.TrimSpace(email)); e != "" {
		b.emails[e] = struct{}{}
	}
}

func (b *SetBuilder) AddPhone(phone string) {
	if p := strings.TrimSpace(phone); p != "" {
		b.phones[p] = struct{}{}
	}
}

func (b *SetBuilder) AddUserID(id string) {
	if id = strings.TrimSpace(id); id != "" {
		b.userIDs[id] = struct{}{}
	}
}

// AddPerson records one person by the first non-blank identity in ids.
// Emails are lower-cased so a person matched by email merges with itself.
func (b *SetBuilder) AddPerson(ids ...string) {
	for _, id := range ids {
		if id = strings.TrimSpace(id); id == "" {
			continue
		}
		if strings.Contains(id, "@") {
			id = strings.ToLower(id)
		}
		b.people[id] = struct{}{}
		return
	}
}

// Build returns the set with each list sorted.
func (b *SetBuilder) Build() RecipientSet {
	return RecipientSet{
		Emails:  sortedKeys(b.emails),
		Phones:  sortedKeys(b.phones),
		UserIDs: sortedKeys(b.userIDs),
		People:  sortedKeys(b.people),
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
