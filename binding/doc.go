// Package binding constructs declared input models from request data.
//
// A Binder is created once per declared model and location. At request time
// it collects raw values from the query string, the matched path wildcards,
// the request headers or a JSON body, checks that every required property
// is present, decodes the values into a fresh model with weak typing (so
// "7" binds to an int) and finally validates the decoded value against the
// model's schema. Failures are reported as *ValidationError, which renders
// as a 400 problem document through the responder package.
package binding
