package apiclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeJSONCamelizesNestedKeys(t *testing.T) {
	in := []byte(`{
		"eth_address": "0xabc",
		"proof_type": "Image",
		"dao": {"social_links": {"twitter_url": "x"}},
		"results": [
			{"total_tasks": 3, "created_at": "2025-01-01"},
			{"total_tasks": 7}
		]
	}`)

	out, err := NormalizeJSON(in)
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, `"ethAddress"`)
	assert.Contains(t, s, `"proofType"`)
	assert.Contains(t, s, `"socialLinks"`)
	assert.Contains(t, s, `"twitterUrl"`)
	assert.Contains(t, s, `"totalTasks"`)
	assert.Contains(t, s, `"createdAt"`)
	assert.NotContains(t, s, "eth_address")
	assert.NotContains(t, s, "total_tasks")
}

func TestNormalizeJSONTopLevelArray(t *testing.T) {
	in := []byte(`[{"approval_rate": 0.75}, {"approval_rate": 1}]`)
	out, err := NormalizeJSON(in)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"approvalRate": 0.75}, {"approvalRate": 1}]`, string(out))
}

func TestNormalizeJSONPreservesNumbers(t *testing.T) {
	// Large ids and exact decimals must survive the round trip untouched.
	in := []byte(`{"big_id": 9007199254740993, "budget": 0.1}`)
	out, err := NormalizeJSON(in)
	require.NoError(t, err)
	assert.Contains(t, string(out), "9007199254740993")
	assert.Contains(t, string(out), "0.1")
}

func TestNormalizeJSONLeavesCamelKeysAlone(t *testing.T) {
	in := []byte(`{"alreadyCamel": 1, "single": 2}`)
	out, err := NormalizeJSON(in)
	require.NoError(t, err)
	assert.JSONEq(t, string(in), string(out))
}

func TestSnakeToCamel(t *testing.T) {
	cases := map[string]string{
		"eth_address":       "ethAddress",
		"total_budget":      "totalBudget",
		"a_b_c":             "aBC",
		"already":           "already",
		"trailing_":         "trailing",
		"proof_image":       "proofImage",
		"approved_submissions_count": "approvedSubmissionsCount",
	}
	for in, want := range cases {
		assert.Equal(t, want, snakeToCamel(in), "key %q", in)
	}
}
