package session

import (
	"encoding/json"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/raterudder/fuelcast/pkg/types"
)

// hashRows is how many leading rows of weather identify a fetch.
const hashRows = 10

// WeatherHash returns a short deterministic fingerprint of the first rows of
// temps. It is used to tell whether a session was analyzed against the same
// weather history.
func WeatherHash(temps []types.DailyTemp) string {
	if len(temps) > hashRows {
		temps = temps[:hashRows]
	}
	if len(temps) == 0 {
		return "0"
	}
	// marshalling a slice of plain structs can't fail
	b, _ := json.Marshal(temps)
	return strconv.FormatUint(xxhash.Sum64(b), 36)
}
