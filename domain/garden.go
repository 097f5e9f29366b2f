package domain

import "time"

// Garden is a managed piece of land subdivided into rentable plots.
// Manager and picker membership is loaded alongside the record so the
// access predicates can run as plain set checks.
type Garden struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Address    string    `json:"address"`
	ManagerIDs []string  `json:"manager_ids,omitempty"`
	PickerIDs  []string  `json:"picker_ids,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// HasManager reports whether the user administers this garden.
func (g *Garden) HasManager(userID string) bool {
	return g != nil && containsID(g.ManagerIDs, userID)
}

// HasPicker reports whether the user harvests on behalf of this garden.
func (g *Garden) HasPicker(userID string) bool {
	return g != nil && containsID(g.PickerIDs, userID)
}

// Plot is a subdivision of a Garden rented to one or more gardeners.
type Plot struct {
	ID          string    `json:"id"`
	GardenID    string    `json:"garden_id"`
	Title       string    `json:"title"`
	GardenerIDs []string  `json:"gardener_ids,omitempty"`
	CropIDs     []string  `json:"crop_ids,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasGardener reports whether the user directly tends this plot.
func (p *Plot) HasGardener(userID string) bool {
	return p != nil && containsID(p.GardenerIDs, userID)
}

func containsID(ids []string, id string) bool {
	if id == "" {
		return false
	}
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
