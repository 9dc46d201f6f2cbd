package policy

// Static vocabularies used by the validators. These are plain immutable
// tables initialized once at package load, never recomputed per call.

// s3ActionNames contains the recognized S3 action names (the part after the
// "s3:" prefix). An action name outside this table is not an error, only a
// warning, since providers keep extending the action set.
var s3ActionNames = map[string]struct{}{
	"AbortMultipartUpload":             {},
	"BypassGovernanceRetention":        {},
	"CompleteMultipartUpload":          {},
	"CreateBucket":                     {},
	"CreateMultipartUpload":            {},
	"DeleteBucket":                     {},
	"DeleteBucketCors":                 {},
	"DeleteBucketPolicy":               {},
	"DeleteBucketTagging":              {},
	"DeleteObject":                     {},
	"DeleteObjectTagging":              {},
	"DeleteObjectVersion":              {},
	"GetBucketAcl":                     {},
	"GetBucketCors":                    {},
	"GetBucketLocation":                {},
	"GetBucketNotification":            {},
	"GetBucketObjectLockConfiguration": {},
	"GetBucketPolicy":                  {},
	"GetBucketTagging":                 {},
	"GetBucketVersioning":              {},
	"GetLifecycleConfiguration":        {},
	"GetObject":                        {},
	"GetObjectAcl":                     {},
	"GetObjectLegalHold":               {},
	"GetObjectRetention":               {},
	"GetObjectTagging":                 {},
	"GetObjectVersion":                 {},
	"ListAllMyBuckets":                 {},
	"ListBucket":                       {},
	"ListBucketMultipartUploads":       {},
	"ListBucketVersions":               {},
	"ListMultipartUploads":             {},
	"ListParts":                        {},
	"PutBucketAcl":                     {},
	"PutBucketCors":                    {},
	"PutBucketNotification":            {},
	"PutBucketObjectLockConfiguration": {},
	"PutBucketPolicy":                  {},
	"PutBucketTagging":                 {},
	"PutBucketVersioning":              {},
	"PutLifecycleConfiguration":        {},
	"PutObject":                        {},
	"PutObjectAcl":                     {},
	"PutObjectLegalHold":               {},
	"PutObjectRetention":               {},
	"PutObjectTagging":                 {},
	"RestoreObject":                    {},
	"UploadPart":                       {},
}

// knownArnServices are the services the target cloud recognizes in
// principal ARNs.
var knownArnServices = map[string]struct{}{
	"iam": {},
	"s3":  {},
	"sts": {},
}

// awsOnlyServices are AWS services that have no counterpart on the target
// cloud. A principal ARN naming one of these is syntactically fine but gets
// a compatibility warning.
var awsOnlyServices = map[string]struct{}{
	"cloudfront":           {},
	"dynamodb":             {},
	"ec2":                  {},
	"elasticloadbalancing": {},
	"lambda":               {},
	"rds":                  {},
}

// standardPartitions are the standard-cloud ARN partitions.
var standardPartitions = map[string]struct{}{
	"aws":        {},
	"aws-cn":     {},
	"aws-us-gov": {},
}

// iamResourceTypes are the expected type prefixes of an IAM ARN resource
// ("type/name"). An unknown type is a warning, not an error.
var iamResourceTypes = map[string]struct{}{
	"user":             {},
	"role":             {},
	"group":            {},
	"instance-profile": {},
	"federated-user":   {},
	"assumed-role":     {},
}

// baseConditionOperators are the recognized IAM condition operators before
// the optional IfExists suffix and ForAllValues:/ForAnyValue: set qualifiers.
var baseConditionOperators = []string{
	"StringEquals",
	"StringNotEquals",
	"StringEqualsIgnoreCase",
	"StringNotEqualsIgnoreCase",
	"StringLike",
	"StringNotLike",
	"NumericEquals",
	"NumericNotEquals",
	"NumericLessThan",
	"NumericLessThanEquals",
	"NumericGreaterThan",
	"NumericGreaterThanEquals",
	"DateEquals",
	"DateNotEquals",
	"DateLessThan",
	"DateLessThanEquals",
	"DateGreaterThan",
	"DateGreaterThanEquals",
	"Bool",
	"BinaryEquals",
	"IpAddress",
	"NotIpAddress",
	"ArnEquals",
	"ArnLike",
	"ArnNotEquals",
	"ArnNotLike",
	"Null",
}

// conditionOperators is the full membership table, including IfExists
// variants. Null has no IfExists form.
var conditionOperators = buildConditionOperators()

func buildConditionOperators() map[string]struct{} {
	ops := make(map[string]struct{}, 2*len(baseConditionOperators))
	for _, op := range baseConditionOperators {
		ops[op] = struct{}{}
		if op != "Null" {
			ops[op+"IfExists"] = struct{}{}
		}
	}
	return ops
}

// IsKnownS3ActionName reports whether name (without the "s3:" prefix) is in
// the recognized S3 action vocabulary.
func IsKnownS3ActionName(name string) bool {
	_, ok := s3ActionNames[name]
	return ok
}

// IsKnownConditionOperator reports whether op (without set qualifiers) is a
// recognized condition operator.
func IsKnownConditionOperator(op string) bool {
	_, ok := conditionOperators[op]
	return ok
}
