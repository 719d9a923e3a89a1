package timezone

import (
	"fmt"
	"strings"
	"time"
)

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Africa/Lagos")
	if err != nil {
		// tzdata may be missing on minimal images, WAT has no DST
		Location = time.FixedZone("WAT", 60*60)
	}
}

// fixture kickoff times are published in WAT, so all day boundaries
// are computed in that zone regardless of where the process runs.
func Now() time.Time {
	return time.Now().In(Location)
}

// ParseKickoff resolves an "HH:MM" kickoff on the same calendar day as `day`.
func ParseKickoff(day time.Time, hhmm string) (time.Time, error) {
	hhmm = strings.TrimSpace(hhmm)
	parsed, err := time.ParseInLocation("15:04", hhmm, Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid kickoff time %q: %w", hhmm, err)
	}
	day = day.In(Location)
	return time.Date(
		day.Year(), day.Month(), day.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0,
		Location,
	), nil
}
