package policy

import (
	"regexp"
	"strings"
)

// Partition names recognized in principal ARNs. PartitionIPCld is the
// target cloud's own namespace and follows its own rule set.
const (
	PartitionIPCld = "ipcld"
)

var (
	canonicalUserIdRegex  = regexp.MustCompile(`^[0-9a-f]{64}$`)
	servicePrincipalRegex = regexp.MustCompile(`^[a-z0-9-]+\.(amazonaws\.com|amazon\.com)$`)
	standardArnRegex      = regexp.MustCompile(`^arn:(aws|aws-cn|aws-us-gov):[a-z0-9-]+:[a-z0-9-]*:([0-9]{12}|):.+$`)
	accountIdRegex        = regexp.MustCompile(`^[0-9]{12}$`)
	bareDigitsRegex       = regexp.MustCompile(`^[0-9]+$`)
)

// ValidatePrincipal checks a principal identifier against the accepted
// grammars: wildcard, canonical user ID, AWS service principal, principal
// ARN (ipcld or standard partition), or bare 12-digit account ID. The input
// must already be trimmed; an empty string is valid because the field is
// optional. Exactly one branch produces the verdict.
func ValidatePrincipal(principal string) *Verdict {
	verdict := &Verdict{}

	if principal == "" {
		return verdict
	}

	if principal == "*" {
		verdict.addWarning("Wildcard principal grants public access to the bucket")
		return verdict
	}

	if canonicalUserIdRegex.MatchString(principal) {
		verdict.addWarning("Canonical user IDs cannot be checked syntactically; verify the ID against your provider's account settings")
		return verdict
	}

	if strings.Contains(principal, ".amazonaws.com") || strings.Contains(principal, ".amazon.com") {
		if !servicePrincipalRegex.MatchString(principal) {
			verdict.addError("Invalid service principal format. Expected: service-name.amazonaws.com")
		} else {
			verdict.addWarning("AWS service principals are not supported by the target cloud")
		}
		return verdict
	}

	if strings.HasPrefix(principal, "arn:") {
		validatePrincipalArn(principal, verdict)
		return verdict
	}

	if bareDigitsRegex.MatchString(principal) {
		if len(principal) != 12 {
			verdict.addError("Account IDs must be exactly 12 digits, got %d", len(principal))
		} else {
			verdict.addWarning("Bare account IDs are accepted, but the full ARN form arn:aws:iam::%s:root is preferred", principal)
		}
		return verdict
	}

	verdict.addError("Principal must be a wildcard (*), a 12-digit account ID, a 64-character canonical user ID, a service principal, or a principal ARN")
	return verdict
}

// validatePrincipalArn validates a principal with the arn: prefix. The ARN is
// split on ':' into arn, partition, service, region, account, and the
// remaining parts rejoined as the resource.
func validatePrincipalArn(principal string, verdict *Verdict) {
	parts := strings.Split(principal, ":")

	partition := arnPart(parts, 1)
	if partition == PartitionIPCld {
		validateIPCldArn(parts, verdict)
		return
	}

	// Standard-cloud ARNs must match the overall pattern before any
	// field-level checks run.
	if !standardArnRegex.MatchString(principal) {
		verdict.addError("Invalid ARN format. Expected: arn:partition:service:region:account-id:resource")
		return
	}

	// Redundant with the pattern, kept as an explicit check so the message
	// names the offending partition.
	if _, ok := standardPartitions[partition]; !ok {
		verdict.addError("Unknown ARN partition %q", partition)
	}

	service := arnPart(parts, 2)
	region := arnPart(parts, 3)
	account := arnPart(parts, 4)
	resource := arnResource(parts)

	if _, known := knownArnServices[service]; !known {
		if _, awsOnly := awsOnlyServices[service]; awsOnly {
			verdict.addWarning("Service %q is AWS-specific and is not supported by the target cloud", service)
		} else {
			verdict.addWarning("Unusual service %q in principal ARN", service)
		}
	}

	switch service {
	case "iam":
		if !accountIdRegex.MatchString(account) {
			verdict.addError("IAM ARN account ID must be exactly 12 digits, got %q", account)
		}
		if resource == "" {
			verdict.addError("IAM ARN is missing the resource part")
		} else if resource != "root" {
			if !strings.Contains(resource, "/") {
				verdict.addError("IAM ARN resource must be \"root\" or take the form type/name")
			} else {
				resourceType := resource[:strings.Index(resource, "/")]
				if _, ok := iamResourceTypes[resourceType]; !ok {
					verdict.addWarning("Unrecognized IAM resource type %q", resourceType)
				}
			}
		}
		if region != "" {
			verdict.addWarning("IAM ARNs are global; the region field should be empty")
		}
	case "s3":
		if account != "" {
			verdict.addWarning("S3 ARNs do not carry an account ID")
		}
		if region != "" {
			verdict.addWarning("S3 ARNs do not carry a region")
		}
	}
}

// validateIPCldArn validates an ARN in the target cloud's own partition:
// arn:ipcld:iam::canonical-id:type/name. There is no region concept and the
// canonical ID is not constrained to digits.
func validateIPCldArn(parts []string, verdict *Verdict) {
	if service := arnPart(parts, 2); service != "iam" {
		verdict.addError("ipcld principal ARNs must use the iam service, got %q", service)
	}

	if arnPart(parts, 4) == "" {
		verdict.addError("ipcld principal ARNs require a canonical ID")
	}

	resource := arnResource(parts)
	if resource == "" {
		verdict.addError("ipcld principal ARN is missing the resource part")
	} else if !strings.Contains(resource, "/") {
		verdict.addError("ipcld principal ARN resource must take the form type/name")
	}
}

func arnPart(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return ""
}

// arnResource rejoins everything after the account field, since resource
// paths may themselves contain colons.
func arnResource(parts []string) string {
	if len(parts) <= 5 {
		return ""
	}
	return strings.Join(parts[5:], ":")
}
