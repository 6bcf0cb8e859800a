// Package seed carries the talent record set bundled with the binary. It is the catalog source
// when no CMS is configured.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/camden-git/castingvitrine/models"
)

//go:embed talents.json
var talentsJSON []byte

// Talents decodes the bundled record set, in file order.
func Talents() ([]models.Talent, error) {
	var talents []models.Talent
	if err := json.Unmarshal(talentsJSON, &talents); err != nil {
		return nil, fmt.Errorf("failed to decode bundled talents: %w", err)
	}
	return talents, nil
}
