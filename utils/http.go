package utils

import (
	"time"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
)

// HTTPClient is used for evidence uploads. Attachments go up to 50MB, so the
// timeout is generous. It stays a BuildableClient so the SDK can still layer
// AWS_CA_BUNDLE onto its transport.
var HTTPClient = awshttp.NewBuildableClient().WithTimeout(2 * time.Minute)
