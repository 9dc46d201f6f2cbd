package policy

import (
	"regexp"
	"strings"
)

var (
	bucketNameCharsetRegex = regexp.MustCompile(`^[a-z0-9.-]*$`)
	bucketNameEdgeRegex    = regexp.MustCompile(`^[a-z0-9]$`)
	ipAddressShapeRegex    = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)
)

// ValidateBucketName checks a bucket name against the S3 naming rules and
// returns every violation at once. The caller must trim the input first;
// an empty string is the caller's required-field concern, not handled here.
// Warnings are always empty for bucket names.
func ValidateBucketName(name string) *Verdict {
	verdict := &Verdict{}

	if len(name) < 3 {
		verdict.addError("Bucket name must be at least 3 characters long")
	}
	if len(name) > 63 {
		verdict.addError("Bucket name must not exceed 63 characters")
	}

	if !bucketNameCharsetRegex.MatchString(name) {
		verdict.addError("Bucket name can only contain lowercase letters, numbers, periods, and hyphens")
	}

	if len(name) > 0 && !bucketNameEdgeRegex.MatchString(name[:1]) {
		verdict.addError("Bucket name must begin with a lowercase letter or number")
	}
	if len(name) > 0 && !bucketNameEdgeRegex.MatchString(name[len(name)-1:]) {
		verdict.addError("Bucket name must end with a lowercase letter or number")
	}

	// Purely syntactic: four dot-separated 1-3 digit groups, regardless of
	// whether the groups are valid octets.
	if ipAddressShapeRegex.MatchString(name) {
		verdict.addError("Bucket name must not be formatted as an IP address")
	}

	if strings.HasPrefix(name, "xn--") {
		verdict.addError("Bucket name must not start with the prefix xn--")
	}
	if strings.HasSuffix(name, "-s3alias") {
		verdict.addError("Bucket name must not end with the suffix -s3alias")
	}

	if strings.Contains(name, "..") {
		verdict.addError("Bucket name must not contain two adjacent periods")
	}
	if strings.Contains(name, ".-") || strings.Contains(name, "-.") {
		verdict.addError("Bucket name must not contain a period next to a hyphen")
	}

	// Reported separately from the character set check so the caller can
	// show the user the specific problem.
	if strings.ToLower(name) != name {
		verdict.addError("Bucket name must not contain uppercase letters")
	}
	if strings.Contains(name, "_") {
		verdict.addError("Bucket name must not contain underscores")
	}

	return verdict
}
