package policy

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDocument(t *testing.T, raw string) interface{} {
	t.Helper()
	var value interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &value))
	return value
}

func TestValidateDocumentTopLevel(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantErrors   []string
		wantWarnings []string
	}{
		{
			name: "minimal valid document",
			raw:  `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Action":"s3:GetObject","Resource":"*"}]}`,
		},
		{
			name:       "not an object",
			raw:        `["Statement"]`,
			wantErrors: []string{"must be a JSON object"},
		},
		{
			name:       "null document",
			raw:        `null`,
			wantErrors: []string{"must be a JSON object"},
		},
		{
			name:       "missing version",
			raw:        `{"Statement":[{"Effect":"Allow","Action":"s3:GetObject","Resource":"*"}]}`,
			wantErrors: []string{"must contain a Version"},
		},
		{
			name:       "version wrong type",
			raw:        `{"Version":2012,"Statement":[{"Effect":"Allow","Action":"s3:GetObject","Resource":"*"}]}`,
			wantErrors: []string{"Version must be a string"},
		},
		{
			name:       "unrecognized version",
			raw:        `{"Version":"2020-01-01","Statement":[{"Effect":"Allow","Action":"s3:GetObject","Resource":"*"}]}`,
			wantErrors: []string{"Version must be"},
		},
		{
			name:         "deprecated version",
			raw:          `{"Version":"2008-10-17","Statement":[{"Effect":"Allow","Action":"s3:GetObject","Resource":"*"}]}`,
			wantWarnings: []string{"deprecated"},
		},
		{
			name:       "missing statement",
			raw:        `{"Version":"2012-10-17"}`,
			wantErrors: []string{"must contain a Statement"},
		},
		{
			name:       "statement not an array",
			raw:        `{"Version":"2012-10-17","Statement":{"Effect":"Allow"}}`,
			wantErrors: []string{"Statement must be an array"},
		},
		{
			name:       "empty statement array",
			raw:        `{"Version":"2012-10-17","Statement":[]}`,
			wantErrors: []string{"Statement array cannot be empty"},
		},
		{
			name:       "id wrong type",
			raw:        `{"Version":"2012-10-17","Id":7,"Statement":[{"Effect":"Allow","Action":"s3:GetObject","Resource":"*"}]}`,
			wantErrors: []string{"Id must be a string"},
		},
		{
			name: "id accepted",
			raw:  `{"Version":"2012-10-17","Id":"policy-1","Statement":[{"Effect":"Allow","Action":"s3:GetObject","Resource":"*"}]}`,
		},
		{
			name:         "unknown root key",
			raw:          `{"Version":"2012-10-17","Extra":true,"Statement":[{"Effect":"Allow","Action":"s3:GetObject","Resource":"*"}]}`,
			wantWarnings: []string{`Unknown top-level key "Extra"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := ValidateDocument(parseDocument(t, tt.raw))

			require.Len(t, verdict.Errors, len(tt.wantErrors), "errors: %v", verdict.Errors)
			for i, fragment := range tt.wantErrors {
				assert.Contains(t, verdict.Errors[i], fragment)
			}
			require.Len(t, verdict.Warnings, len(tt.wantWarnings), "warnings: %v", verdict.Warnings)
			for i, fragment := range tt.wantWarnings {
				assert.Contains(t, verdict.Warnings[i], fragment)
			}
		})
	}
}

func TestValidateDocumentStatements(t *testing.T) {
	wrap := func(statement string) string {
		return `{"Version":"2012-10-17","Statement":[` + statement + `]}`
	}

	tests := []struct {
		name         string
		statement    string
		wantErrors   []string
		wantWarnings []string
	}{
		{
			name:       "statement not an object",
			statement:  `"allow all"`,
			wantErrors: []string{"Statement 0 must be a JSON object"},
		},
		{
			name:       "sid wrong type",
			statement:  `{"Sid":5,"Effect":"Allow","Action":"s3:GetObject","Resource":"*"}`,
			wantErrors: []string{"Sid must be a string"},
		},
		{
			name:       "sid with punctuation",
			statement:  `{"Sid":"my-sid","Effect":"Allow","Action":"s3:GetObject","Resource":"*"}`,
			wantErrors: []string{"letters and numbers"},
		},
		{
			name:       "missing effect",
			statement:  `{"Action":"s3:GetObject","Resource":"*"}`,
			wantErrors: []string{"Effect is required"},
		},
		{
			name:       "bad effect echoes value",
			statement:  `{"Effect":"allow","Action":"s3:GetObject","Resource":"*"}`,
			wantErrors: []string{"Effect must be Allow or Deny, got allow"},
		},
		{
			name:         "principal is warning only",
			statement:    `{"Effect":"Allow","Principal":"*","Action":"s3:GetObject","Resource":"*"}`,
			wantWarnings: []string{"Principal is ignored"},
		},
		{
			name:         "not principal is warning only",
			statement:    `{"Effect":"Allow","NotPrincipal":{"AWS":"*"},"Action":"s3:GetObject","Resource":"*"}`,
			wantWarnings: []string{"NotPrincipal is ignored"},
		},
		{
			name:       "action and notaction are exclusive",
			statement:  `{"Effect":"Allow","Action":"s3:GetObject","NotAction":"s3:PutObject","Resource":"*"}`,
			wantErrors: []string{"Action and NotAction are mutually exclusive"},
		},
		{
			name:       "neither action nor notaction",
			statement:  `{"Effect":"Allow","Resource":"*"}`,
			wantErrors: []string{"one of Action or NotAction is required"},
		},
		{
			name:      "notaction accepted",
			statement: `{"Effect":"Deny","NotAction":"s3:GetObject","Resource":"*"}`,
		},
		{
			name:       "resource and notresource are exclusive",
			statement:  `{"Effect":"Allow","Action":"s3:GetObject","Resource":"*","NotResource":"*"}`,
			wantErrors: []string{"Resource and NotResource are mutually exclusive"},
		},
		{
			name:       "neither resource nor notresource",
			statement:  `{"Effect":"Allow","Action":"s3:GetObject"}`,
			wantErrors: []string{"one of Resource or NotResource is required"},
		},
		{
			name:         "unknown statement key",
			statement:    `{"Effect":"Allow","Action":"s3:GetObject","Resource":"*","Comment":"x"}`,
			wantWarnings: []string{`unknown key "Comment"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := ValidateDocument(parseDocument(t, wrap(tt.statement)))

			require.Len(t, verdict.Errors, len(tt.wantErrors), "errors: %v", verdict.Errors)
			for i, fragment := range tt.wantErrors {
				assert.Contains(t, verdict.Errors[i], fragment)
			}
			require.Len(t, verdict.Warnings, len(tt.wantWarnings), "warnings: %v", verdict.Warnings)
			for i, fragment := range tt.wantWarnings {
				assert.Contains(t, verdict.Warnings[i], fragment)
			}
		})
	}
}

func TestValidateDocumentActions(t *testing.T) {
	wrap := func(action string) string {
		return `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Action":` + action + `,"Resource":"*"}]}`
	}

	tests := []struct {
		name         string
		action       string
		wantErrors   int
		wantWarnings int
	}{
		{name: "bare wildcard", action: `"*"`},
		{name: "known action", action: `"s3:GetObject"`},
		{name: "action array both forms equivalent", action: `["s3:GetObject","s3:PutObject"]`},
		{name: "wildcard action name", action: `"s3:Get*"`},
		{name: "empty array", action: `[]`, wantErrors: 1},
		{name: "wrong type", action: `42`, wantErrors: 1},
		{name: "non-string entry", action: `["s3:GetObject",17]`, wantErrors: 1},
		{name: "missing colon", action: `"GetObject"`, wantErrors: 1},
		{name: "non s3 service", action: `"iam:PassRole"`, wantWarnings: 1},
		{name: "unknown s3 action", action: `"s3:FrobnicateObject"`, wantWarnings: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := ValidateDocument(parseDocument(t, wrap(tt.action)))
			assert.Len(t, verdict.Errors, tt.wantErrors, "errors: %v", verdict.Errors)
			assert.Len(t, verdict.Warnings, tt.wantWarnings, "warnings: %v", verdict.Warnings)
		})
	}
}

func TestValidateDocumentResources(t *testing.T) {
	wrap := func(resource string) string {
		return `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Action":"s3:GetObject","Resource":` + resource + `}]}`
	}

	tests := []struct {
		name         string
		resource     string
		wantErrors   int
		wantWarnings int
	}{
		{name: "bare wildcard", resource: `"*"`},
		{name: "bucket arn", resource: `"arn:aws:s3:::my-bucket"`},
		{name: "object arn", resource: `"arn:aws:s3:::my-bucket/reports/*"`},
		{name: "empty array", resource: `[]`, wantErrors: 1},
		{name: "wrong type", resource: `true`, wantErrors: 1},
		{name: "non-string entry", resource: `["arn:aws:s3:::my-bucket",3]`, wantErrors: 1},
		{name: "foreign prefix", resource: `"arn:aws:ec2:us-east-1::instance/i-0"`, wantErrors: 1},
		{name: "empty bucket segment", resource: `"arn:aws:s3:::"`, wantErrors: 1},
		{name: "doubled slash", resource: `"arn:aws:s3:::my-bucket//key"`, wantErrors: 1},
		{
			name:       "bucket name over 63 chars",
			resource:   `"arn:aws:s3:::a012345678901234567890123456789012345678901234567890123456789012"`,
			wantErrors: 1,
		},
		{
			name:         "bucket charset recheck is warning only",
			resource:     `"arn:aws:s3:::my_bucket"`,
			wantWarnings: 1,
		},
		{
			name:         "bucket edge recheck is warning only",
			resource:     `"arn:aws:s3:::-bucket"`,
			wantWarnings: 1,
		},
		{
			name:     "object path skips bucket recheck",
			resource: `"arn:aws:s3:::My_Bucket/key"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := ValidateDocument(parseDocument(t, wrap(tt.resource)))
			assert.Len(t, verdict.Errors, tt.wantErrors, "errors: %v", verdict.Errors)
			assert.Len(t, verdict.Warnings, tt.wantWarnings, "warnings: %v", verdict.Warnings)
		})
	}
}

func TestValidateDocumentConditions(t *testing.T) {
	wrap := func(condition string) string {
		return `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Action":"s3:GetObject","Resource":"*","Condition":` + condition + `}]}`
	}

	tests := []struct {
		name       string
		condition  string
		wantErrors []string
	}{
		{
			name:      "string like operator",
			condition: `{"StringLike":{"s3:prefix":["a/*"]}}`,
		},
		{
			name:      "if exists variant",
			condition: `{"StringEqualsIfExists":{"aws:username":"alice"}}`,
		},
		{
			name:      "set qualifier stripped before lookup",
			condition: `{"ForAllValues:StringEquals":{"s3:prefix":["a/"]}}`,
		},
		{
			name:       "unknown operator",
			condition:  `{"BogusOperator":{}}`,
			wantErrors: []string{`unknown condition operator "BogusOperator"`},
		},
		{
			name:       "condition not an object",
			condition:  `["IpAddress"]`,
			wantErrors: []string{"Condition must be a JSON object"},
		},
		{
			name:       "operator block not an object",
			condition:  `{"StringEquals":"alice"}`,
			wantErrors: []string{"must map to a JSON object"},
		},
		{
			name:       "null operator block",
			condition:  `{"StringEquals":null}`,
			wantErrors: []string{"must map to a JSON object"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := ValidateDocument(parseDocument(t, wrap(tt.condition)))
			require.Len(t, verdict.Errors, len(tt.wantErrors), "errors: %v", verdict.Errors)
			for i, fragment := range tt.wantErrors {
				assert.Contains(t, verdict.Errors[i], fragment)
			}
		})
	}
}

func TestValidateDocumentAccumulatesAcrossStatements(t *testing.T) {
	raw := `{"Version":"2012-10-17","Statement":[
		{"Effect":"maybe","Action":"s3:GetObject","Resource":"*"},
		{"Effect":"Allow","Resource":"*"},
		{"Effect":"Allow","Action":"s3:GetObject"}
	]}`

	verdict := ValidateDocument(parseDocument(t, raw))

	require.Len(t, verdict.Errors, 3)
	assert.Contains(t, verdict.Errors[0], "Statement 0")
	assert.Contains(t, verdict.Errors[1], "Statement 1")
	assert.Contains(t, verdict.Errors[2], "Statement 2")
}

// Assembler output always passes structural validation with zero errors.
func TestAssembledDocumentsRoundTrip(t *testing.T) {
	requests := []AssembleRequest{
		{Bucket: "test-bucket", Effect: PolicyEffectAllow, Actions: []string{"s3:GetObject"}},
		{Bucket: "logs", Effect: PolicyEffectDeny, Actions: []string{"s3:ListBucket", "s3:GetObject", "s3:PutObject"}},
		{Bucket: "data", Effect: PolicyEffectAllow, ResourcePath: "a/b/*", Actions: []string{"s3:ListAllMyBuckets"}},
		{
			Bucket:        "cond",
			Effect:        PolicyEffectAllow,
			Actions:       []string{"s3:GetBucketTagging"},
			ConditionText: `{"StringLike":{"s3:prefix":["a/*"]}}`,
		},
	}

	for _, req := range requests {
		doc, err := Assemble(req)
		require.NoError(t, err)

		raw, err := json.Marshal(doc)
		require.NoError(t, err)

		var value interface{}
		require.NoError(t, json.Unmarshal(raw, &value))

		verdict := ValidateDocument(value)
		assert.Empty(t, verdict.Errors, "assembled document for %q failed validation", req.Bucket)
		assert.Empty(t, verdict.Warnings)
	}
}
