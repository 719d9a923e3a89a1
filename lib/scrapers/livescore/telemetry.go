package livescore

import (
	"matchcast-backend/lib/telemetry"
)

var tracer = telemetry.Tracer("matchcast.lib.scrapers.livescore")
