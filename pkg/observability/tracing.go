package observability

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
)

// InstrumentAWSClients wires X-Ray tracing into every AWS client built from
// the given config. Call once before constructing service clients.
func InstrumentAWSClients(awsCfg *aws.Config) {
	awsv2.AWSV2Instrumentor(&awsCfg.APIOptions)
}
