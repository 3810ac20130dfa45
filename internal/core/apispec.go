package core

import "strings"

// HTTPMethods lists the methods an API spec may declare.
var HTTPMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE"}

// APISpec describes the endpoint a Business story exposes or consumes.
// Which of QueryParams, Body and PathParam are meaningful depends on Method.
type APISpec struct {
	Method         string `json:"method"`
	Endpoint       string `json:"endpoint"`
	QueryParams    string `json:"query_params,omitempty"`
	Body           string `json:"body,omitempty"`
	PathParam      string `json:"path_param,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"`
}

// ValidMethod reports whether m is a supported HTTP method (case-insensitive).
func ValidMethod(m string) bool {
	m = strings.ToUpper(strings.TrimSpace(m))
	for _, v := range HTTPMethods {
		if v == m {
			return true
		}
	}
	return false
}

// UsesQueryParams reports whether the method carries query parameters.
func (a APISpec) UsesQueryParams() bool { return a.Method == "GET" }

// UsesBody reports whether the method carries a request body.
func (a APISpec) UsesBody() bool {
	switch a.Method {
	case "POST", "PUT", "PATCH":
		return true
	}
	return false
}

// UsesPathParam reports whether the method addresses a resource by path parameter.
func (a APISpec) UsesPathParam() bool {
	switch a.Method {
	case "PUT", "PATCH", "DELETE":
		return true
	}
	return false
}

// Normalize trims every field, upper-cases the method and clears the fields that are
// incompatible with it (a body under GET, query params under POST, and so on). It returns the
// adapted spec together with the names of the fields it dropped.
func (a APISpec) Normalize() (APISpec, []string) {
	out := APISpec{
		Method:         strings.ToUpper(strings.TrimSpace(a.Method)),
		Endpoint:       strings.TrimSpace(a.Endpoint),
		QueryParams:    strings.TrimSpace(a.QueryParams),
		Body:           strings.TrimSpace(a.Body),
		PathParam:      strings.TrimSpace(a.PathParam),
		ResponseFormat: strings.TrimSpace(a.ResponseFormat),
	}

	var dropped []string
	if out.QueryParams != "" && !out.UsesQueryParams() {
		out.QueryParams = ""
		dropped = append(dropped, "query_params")
	}
	if out.Body != "" && !out.UsesBody() {
		out.Body = ""
		dropped = append(dropped, "body")
	}
	if out.PathParam != "" && !out.UsesPathParam() {
		out.PathParam = ""
		dropped = append(dropped, "path_param")
	}
	return out, dropped
}

// Map returns the non-empty fields keyed by their record names.
func (a APISpec) Map() map[string]string {
	m := map[string]string{"method": a.Method, "endpoint": a.Endpoint}
	if a.QueryParams != "" {
		m["query_params"] = a.QueryParams
	}
	if a.Body != "" {
		m["body"] = a.Body
	}
	if a.PathParam != "" {
		m["path_param"] = a.PathParam
	}
	if a.ResponseFormat != "" {
		m["response_format"] = a.ResponseFormat
	}
	return m
}
