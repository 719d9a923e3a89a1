package matchdata

import (
	"matchcast-backend/lib/telemetry"

	"go.opentelemetry.io/otel/metric"
)

var tracer = telemetry.Tracer("matchcast.services.matchdata")
var meter = telemetry.Meter("matchcast.services.matchdata")

var discoveredCounter, _ = meter.Int64Counter(
	"matches_discovered",
	metric.WithDescription("Fixtures found on the fixtures page."),
)
var incompleteCounter, _ = meter.Int64Counter(
	"matches_incomplete",
	metric.WithDescription("Fixtures dropped because no standings could be recovered."),
)
var storedCounter, _ = meter.Int64Counter(
	"matches_stored",
	metric.WithDescription("Match records written by a refresh."),
)
