package service

import (
	"strings"

	"github.com/territory_assign/backend/internal/models"
)

type candidate struct {
	Territory models.Territory
	Member    models.TeamMemberAssignment
}

// findMember returns the first active membership of userID, in territory
// order, ignoring capacity.
func findMember(territories []models.Territory, userID string) (candidate, bool) {
	for _, t := range territories {
		if !t.Active {
			continue
		}
		for _, m := range t.TeamMembers {
			if m.UserID == userID && m.Active {
				return candidate{Territory: t, Member: m}, true
			}
		}
	}
	return candidate{}, false
}

func findTerritory(territories []models.Territory, id string) (models.Territory, bool) {
	for _, t := range territories {
		if t.ID == id {
			return t, true
		}
	}
	return models.Territory{}, false
}

func activeTerritories(territories []models.Territory) []models.Territory {
	out := make([]models.Territory, 0, len(territories))
	for _, t := range territories {
		if t.Active {
			out = append(out, t)
		}
	}
	return out
}

// availableMembers yields active members with spare capacity of active
// territories, in territory order then roster order.
func availableMembers(territories []models.Territory, keep func(models.TeamMemberAssignment) bool) []candidate {
	var out []candidate
	for _, t := range territories {
		if !t.Active {
			continue
		}
		for _, m := range t.TeamMembers {
			if !m.Active || !m.HasCapacity() {
				continue
			}
			if keep != nil && !keep(m) {
				continue
			}
			out = append(out, candidate{Territory: t, Member: m})
		}
	}
	return out
}

// leastLoaded picks the lowest client count; the first encountered wins ties.
func leastLoaded(cands []candidate) (candidate, bool) {
	if len(cands) == 0 {
		return candidate{}, false
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if c.Member.CurrentClientCount < best.Member.CurrentClientCount {
			best = c
		}
	}
	return best, true
}

func hasAnySpecialty(m models.TeamMemberAssignment, required []string) bool {
	for _, have := range m.Specialties {
		for _, want := range required {
			if strings.EqualFold(strings.TrimSpace(have), strings.TrimSpace(want)) {
				return true
			}
		}
	}
	return false
}
