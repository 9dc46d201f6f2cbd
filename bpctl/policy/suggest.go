package policy

import (
	"regexp"
	"strings"

	"github.com/tidwall/match"
)

var (
	hexRunRegex       = regexp.MustCompile(`^[0-9a-f]+$`)
	serviceLabelRegex = regexp.MustCompile(`^[a-z0-9-]+$`)
	servicePartial    = regexp.MustCompile(`^[a-z0-9-]+\.[a-z0-9.-]*$`)
	arnSlotLabelRegex = regexp.MustCompile(`^[a-z0-9-]*$`)
	suggestPartitions = []string{"aws", "aws-cn", "aws-us-gov", PartitionIPCld}
)

// SuggestPrincipal inspects a possibly-incomplete principal being typed and
// returns at most one suggestion guiding the next token. It mirrors the slot
// order of the full principal grammar (partition, service, region,
// account/canonical ID, resource) but never calls the full validator; a nil
// result tells the caller to fall back to ValidatePrincipal.
func SuggestPrincipal(partial string) *Suggestion {
	if partial == "" {
		return nil
	}

	if partial == "*" {
		return warning("Wildcard principal grants public access to the bucket")
	}

	// "a", "ar", "arn" are treated as the arn: literal being typed.
	if partial != "arn" && strings.HasPrefix("arn", partial) {
		return hint("Type arn: to begin a principal ARN")
	}
	if partial == "arn" {
		return hint("Add a colon: arn:partition:service:region:account-id:resource")
	}

	if strings.HasPrefix(partial, "arn:") {
		return suggestArn(partial)
	}

	// Service principal in progress, e.g. "cloudfront.amazo".
	if servicePartial.MatchString(partial) {
		if strings.HasSuffix(partial, ".amazonaws.com") || strings.HasSuffix(partial, ".amazon.com") {
			return warning("AWS service principals are not supported by the target cloud")
		}
		return hint("Service principals end in .amazonaws.com")
	}

	// Bare account ID in progress.
	if bareDigitsRegex.MatchString(partial) {
		switch {
		case len(partial) < 12:
			return hint("Account IDs are 12 digits (%d typed)", len(partial))
		case len(partial) == 12:
			return success("Account ID complete; the ARN form arn:aws:iam::%s:root is preferred", partial)
		default:
			return errorSuggestion("Account IDs are exactly 12 digits")
		}
	}

	// Canonical user ID in progress: lowercase hex with at least one letter
	// (pure digits were handled above).
	if hexRunRegex.MatchString(partial) {
		switch {
		case len(partial) == 64:
			return success("Canonical user ID recognized")
		case len(partial) < 64:
			return hint("Canonical user IDs are 64 hex characters (%d typed)", len(partial))
		default:
			return errorSuggestion("Canonical user IDs are exactly 64 hex characters")
		}
	}

	return nil
}

// suggestArn produces guidance for the colon-delimited slot currently being
// typed. The slot index is the last element of the split; a trailing colon
// means the user just opened the next slot.
func suggestArn(partial string) *Suggestion {
	parts := strings.Split(partial, ":")
	slot := len(parts) - 1
	content := parts[slot]

	switch slot {
	case 1:
		return suggestPartition(content)
	case 2:
		return suggestService(parts[1], content)
	case 3:
		return suggestRegion(parts[1], parts[2], content)
	case 4:
		return suggestAccount(parts[1], parts[2], content)
	default:
		return suggestResource(parts, content)
	}
}

func suggestPartition(content string) *Suggestion {
	if content == "" {
		return hint("Next: partition — aws, aws-cn, aws-us-gov, or ipcld")
	}
	for _, p := range suggestPartitions {
		if content == p {
			return hint("Partition %q recognized; continue with :service", content)
		}
	}
	for _, p := range suggestPartitions {
		if strings.HasPrefix(p, content) {
			return hint("Keep typing; partitions are aws, aws-cn, aws-us-gov, and ipcld")
		}
	}
	return errorSuggestion("No recognized partition starts with %q", content)
}

func suggestService(partition, content string) *Suggestion {
	if partition == PartitionIPCld {
		switch {
		case content == "":
			return hint("Next: service — ipcld ARNs use iam")
		case content == "iam":
			return hint("Continue with ::canonical-id:type/name (no region)")
		case strings.HasPrefix("iam", content):
			return hint("Keep typing; ipcld ARNs use the iam service")
		default:
			return errorSuggestion("ipcld ARNs must use the iam service, not %q", content)
		}
	}

	if content == "" {
		return hint("Next: service — iam, s3, or sts")
	}
	if !serviceLabelRegex.MatchString(content) {
		return errorSuggestion("Service names contain only lowercase letters, digits, and hyphens")
	}
	if _, awsOnly := awsOnlyServices[content]; awsOnly {
		return warning("Service %q is AWS-specific and is not supported by the target cloud", content)
	}
	if _, known := knownArnServices[content]; known {
		return hint("Service %q recognized; continue with :region (may be empty)", content)
	}
	return hint("Uncommon service %q; continue with :region if intended", content)
}

func suggestRegion(partition, service, content string) *Suggestion {
	if content == "" {
		return hint("Region may stay empty; type : to continue")
	}
	if !arnSlotLabelRegex.MatchString(content) {
		return errorSuggestion("Regions contain only lowercase letters, digits, and hyphens")
	}
	switch service {
	case "iam":
		return warning("IAM ARNs are global; the region slot is normally empty")
	case "s3":
		return warning("S3 ARNs do not carry a region")
	}
	return hint("Continue with :account-id")
}

func suggestAccount(partition, service, content string) *Suggestion {
	if partition == PartitionIPCld {
		if content == "" {
			return hint("Next: canonical ID of the account")
		}
		return hint("Continue with :type/name, e.g. :user/alice")
	}

	if content == "" {
		return hint("Next: account ID (12 digits), or : again for S3 resources")
	}
	if !bareDigitsRegex.MatchString(content) {
		return errorSuggestion("Account IDs contain only digits")
	}
	switch {
	case len(content) < 12:
		return hint("Account IDs are 12 digits (%d typed)", len(content))
	case len(content) == 12:
		return hint("Account ID complete; continue with :resource")
	default:
		return errorSuggestion("Account IDs are exactly 12 digits")
	}
}

func suggestResource(parts []string, content string) *Suggestion {
	partition := parts[1]
	service := parts[2]
	resource := strings.Join(parts[5:], ":")

	if resource == "" {
		if service == "iam" {
			return hint("Next: resource — root or type/name, e.g. user/alice")
		}
		return hint("Next: resource path")
	}

	if match.IsPattern(resource) {
		return warning("Wildcards in the resource match multiple identities")
	}

	if service == "iam" && partition != PartitionIPCld && resource == "root" {
		return success("Principal ARN complete: account root")
	}

	if idx := strings.Index(resource, "/"); idx >= 0 {
		resourceType := resource[:idx]
		name := resource[idx+1:]
		if name == "" {
			return hint("Finish the resource with a name after %s/", resourceType)
		}
		if service == "iam" {
			if _, ok := iamResourceTypes[resourceType]; !ok {
				return warning("Unrecognized IAM resource type %q", resourceType)
			}
		}
		return success("Principal ARN looks complete")
	}

	if service == "iam" && partition != PartitionIPCld && strings.HasPrefix("root", resource) {
		return hint("Keep typing: root, or a type/name resource")
	}
	return hint("Resources take the form type/name")
}
