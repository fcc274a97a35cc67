package http

import (
	stdhttp "net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"eduvista/site/internal/domain/auth"
)

const adminPrefix = "/api/admin"

type idInput struct {
	ID uint `path:"id"`
}

type pageQuery struct {
	Limit  int `query:"limit" minimum:"1" maximum:"200" default:"50"`
	Offset int `query:"offset" minimum:"0"`
}

// publicOp describes an unauthenticated JSON operation.
func publicOp(method, path, summary, tag string) huma.Operation {
	return huma.Operation{
		OperationID:   operationID(method, path),
		Method:        method,
		Path:          path,
		Summary:       summary,
		Tags:          []string{tag},
		DefaultStatus: defaultStatus(method),
	}
}

// adminOp describes a JSON operation under /api/admin that requires at least role.
func adminOp(method, path, summary, tag string, role auth.Role) huma.Operation {
	op := publicOp(method, adminPrefix+path, summary, tag)
	op.Metadata = map[string]any{metadataRole: role}
	op.Security = []map[string][]string{{"bearer": {}}}
	op.Errors = []int{stdhttp.StatusUnauthorized, stdhttp.StatusForbidden}
	return op
}

func defaultStatus(method string) int {
	if method == stdhttp.MethodPost {
		return stdhttp.StatusCreated
	}
	return stdhttp.StatusOK
}

func operationID(method, path string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))
	for _, part := range strings.Split(path, "/") {
		part = strings.Trim(part, "{}")
		if part == "" {
			continue
		}
		b.WriteByte('-')
		b.WriteString(part)
	}
	return b.String()
}
