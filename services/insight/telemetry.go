package insight

import "matchcast-backend/lib/telemetry"

var tracer = telemetry.Tracer("matchcast.services.insight")
