package entitytype

import "testing"

func TestAllTypesHaveARegistryEntry(t *testing.T) {
	for _, id := range AllTypes() {
		if _, ok := Registry[id]; !ok {
			t.Fatalf("entity type %v (%s) has no Registry entry", id, id)
		}
	}
}

func TestStringIsUniquePerType(t *testing.T) {
	seen := make(map[string]ID)
	for _, id := range AllTypes() {
		name := id.String()
		if name == "unknown" {
			t.Fatalf("entity type %d has no String() case", id)
		}
		if other, ok := seen[name]; ok {
			t.Fatalf("wire name %q used by both %v and %v", name, other, id)
		}
		seen[name] = id
	}
}

func TestPlayerOwnerComponentsAreNotInFullSet(t *testing.T) {
	def := Registry[Player]
	owner := make(map[int]bool)
	for _, c := range def.OwnerComponents {
		owner[int(c)] = true
	}
	for _, c := range def.Components {
		if owner[int(c)] {
			t.Fatalf("component %v listed in both Components and OwnerComponents", c)
		}
	}
}
