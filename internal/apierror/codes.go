package apierror

// Error type URIs following the urn:moodlens:error:* pattern.
// These are used as the "type" field in RFC 9457 Problem Details.
const (
	// TypeValidation indicates request validation failed (400)
	TypeValidation = "urn:moodlens:error:validation"

	// TypeInvalidEntry indicates a mood entry was rejected at ingestion (400)
	TypeInvalidEntry = "urn:moodlens:error:invalid_entry"

	// TypeInvalidGoal indicates a goal request was rejected (400)
	TypeInvalidGoal = "urn:moodlens:error:invalid_goal"

	// TypeNotFound indicates the requested resource was not found (404)
	TypeNotFound = "urn:moodlens:error:not_found"

	// TypeConflict indicates a resource conflict (409)
	TypeConflict = "urn:moodlens:error:conflict"

	// TypeRateLimit indicates too many requests (429)
	TypeRateLimit = "urn:moodlens:error:rate_limit"

	// TypeUnauthorized indicates missing or invalid authentication (401)
	TypeUnauthorized = "urn:moodlens:error:unauthorized"

	// TypeInternal indicates an unexpected server error (500)
	TypeInternal = "urn:moodlens:error:internal"

	// TypeUnavailable indicates a dependency could not answer in time (503)
	TypeUnavailable = "urn:moodlens:error:unavailable"

	// TypeInvalidUUID indicates an invalid UUID format in request (400)
	TypeInvalidUUID = "urn:moodlens:error:invalid_uuid"

	// TypeBadRequest indicates a malformed or invalid request (400)
	TypeBadRequest = "urn:moodlens:error:bad_request"
)

// Titles for each error type - human-readable summaries
const (
	TitleValidation   = "Validation Error"
	TitleInvalidEntry = "Invalid Mood Entry"
	TitleInvalidGoal  = "Invalid Mood Goal"
	TitleNotFound     = "Resource Not Found"
	TitleConflict     = "Resource Conflict"
	TitleRateLimit    = "Rate Limit Exceeded"
	TitleUnauthorized = "Authentication Required"
	TitleInternal     = "Internal Server Error"
	TitleUnavailable  = "Service Unavailable"
	TitleInvalidUUID  = "Invalid UUID Format"
	TitleBadRequest   = "Bad Request"
)
