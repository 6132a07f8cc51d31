package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"

	"github.com/giantswarm/mcp-service-objects/internal/fanout"
	"github.com/giantswarm/mcp-service-objects/internal/fetcher"
)

func TestParseTypes(t *testing.T) {
	tests := []struct {
		name      string
		input     []string
		want      []fetcher.ResourceType
		errSubstr string
	}{
		{
			name:  "none",
			input: nil,
			want:  []fetcher.ResourceType{},
		},
		{
			name:  "normalises case and spaces",
			input: []string{" Pods", "INGRESSES"},
			want:  []fetcher.ResourceType{fetcher.ResourceTypePods, fetcher.ResourceTypeIngresses},
		},
		{
			name:      "typo gets a hint",
			input:     []string{"deploymnt"},
			errSubstr: `unrecognised type=deploymnt (did you mean "deployments"?)`,
		},
		{
			name:      "no close match",
			input:     []string{"xyz"},
			errSubstr: "unrecognised type=xyz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTypes(tt.input)
			if tt.errSubstr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, fetcher.ErrUnrecognisedType)
				assert.Contains(t, err.Error(), tt.errSubstr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSuggestType(t *testing.T) {
	assert.Equal(t, "configmaps", suggestType("cfgmaps"))
	assert.Equal(t, "horizontalpodautoscalers", suggestType("hpa"))
	assert.Empty(t, suggestType("zzz"))
}

func sampleResponse() *fanout.ObjectsResponse {
	pod := &corev1.Pod{ObjectMeta: metav1.ObjectMeta{Name: "web-0", Namespace: "shop"}}
	return &fanout.ObjectsResponse{
		Items: []fanout.ClusterObjects{
			{
				Cluster: fanout.ClusterRef{Name: "prod"},
				Resources: []fetcher.FetchResponse{
					{Type: fetcher.ResourceTypePods, Resources: []runtime.Object{pod}},
				},
				Errors: []fetcher.FetchError{},
			},
			{
				Cluster:   fanout.ClusterRef{Name: "dev"},
				Resources: []fetcher.FetchResponse{},
				Errors: []fetcher.FetchError{
					{ErrorType: fetcher.ErrorTypeUnauthorized, ResourcePath: "/api/v1/pods", StatusCode: 401},
				},
			},
		},
	}
}

func TestWriteObjects(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		response *fanout.ObjectsResponse
		contains []string
	}{
		{
			name:     "table",
			output:   outputTable,
			response: sampleResponse(),
			contains: []string{"CLUSTER", "RESOURCE", "OBJECTS", "STATUS", "prod", "pods", "ok", "/api/v1/pods", "UNAUTHORIZED_ERROR (401)"},
		},
		{
			name:     "json",
			output:   outputJSON,
			response: sampleResponse(),
			contains: []string{`"items"`, `"name": "prod"`, `"web-0"`, `"errorType": "UNAUTHORIZED_ERROR"`},
		},
		{
			name:     "yaml",
			output:   outputYAML,
			response: sampleResponse(),
			contains: []string{"items:", "name: prod", "name: web-0", "errorType: UNAUTHORIZED_ERROR", "statusCode: 401"},
		},
		{
			name:     "empty table",
			output:   outputTable,
			response: &fanout.ObjectsResponse{Items: []fanout.ClusterObjects{}},
			contains: []string{"No clusters configured."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, writeObjects(&buf, tt.response, tt.output))
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
		})
	}
}

func TestValidateOutput(t *testing.T) {
	for _, output := range []string{outputJSON, outputYAML, outputTable} {
		assert.NoError(t, validateOutput(output))
	}
	err := validateOutput("xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported output format "xml"`)
}

func TestFetchCmd(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	t.Run("requires a service id", func(t *testing.T) {
		cmd := newFetchCmd()
		cmd.SetArgs([]string{})
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})

		assert.Error(t, cmd.Execute())
	})

	t.Run("rejects unknown types before contacting clusters", func(t *testing.T) {
		cmd := newFetchCmd()
		cmd.SetArgs([]string{"checkout", "--types", "pods,foo"})
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})

		err := cmd.Execute()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unrecognised type=foo")
	})

	t.Run("rejects unknown output", func(t *testing.T) {
		cmd := newFetchCmd()
		cmd.SetArgs([]string{"checkout", "-o", "xml"})
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})

		assert.Error(t, cmd.Execute())
	})
}
