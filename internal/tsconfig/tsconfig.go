// Package tsconfig validates the compiler configuration given inline with
// --tsconfig-raw.
package tsconfig

import (
	"github.com/vk/denobuild/internal/schema"
)

// Config is the validated subset of a tsconfig document.
type Config struct {
	CompilerOptions *CompilerOptions
	// JSON is the document with comments and trailing commas removed.
	JSON string
}

// CompilerOptions holds the recognized compilerOptions fields. A nil field
// was absent from the document.
type CompilerOptions struct {
	AlwaysStrict            *bool               `json:"alwaysStrict"`
	BaseURL                 *string             `json:"baseUrl"`
	ExperimentalDecorators  *bool               `json:"experimentalDecorators"`
	ImportsNotUsedAsValues  *string             `json:"importsNotUsedAsValues"`
	JSX                     *string             `json:"jsx"`
	JSXFactory              *string             `json:"jsxFactory"`
	JSXFragmentFactory      *string             `json:"jsxFragmentFactory"`
	JSXImportSource         *string             `json:"jsxImportSource"`
	Paths                   map[string][]string `json:"paths"`
	PreserveValueImports    *bool               `json:"preserveValueImports"`
	Strict                  *bool               `json:"strict"`
	Target                  *string             `json:"target"`
	UseDefineForClassFields *bool               `json:"useDefineForClassFields"`
	VerbatimModuleSyntax    *bool               `json:"verbatimModuleSyntax"`
}

type document struct {
	CompilerOptions *CompilerOptions `json:"compilerOptions"`
}

var documentShape = schema.Object(schema.Fields{
	"compilerOptions": schema.Object(schema.Fields{
		"alwaysStrict":            schema.Bool,
		"baseUrl":                 schema.String,
		"experimentalDecorators":  schema.Bool,
		"importsNotUsedAsValues":  schema.OneOf("remove", "preserve", "error"),
		"jsx":                     schema.OneOf("preserve", "react-native", "react", "react-jsx", "react-jsxdev"),
		"jsxFactory":              schema.String,
		"jsxFragmentFactory":      schema.String,
		"jsxImportSource":         schema.String,
		"paths":                   schema.MapOf(schema.ListOf(schema.String)),
		"preserveValueImports":    schema.Bool,
		"strict":                  schema.Bool,
		"target":                  schema.String,
		"useDefineForClassFields": schema.Bool,
		"verbatimModuleSyntax":    schema.Bool,
	}),
})

// Parse decodes src as JSON with comments and checks the recognized fields.
// Unknown fields are ignored at every level.
func Parse(src string) (*Config, error) {
	var doc document
	decoded, err := schema.Load([]byte(src), documentShape, &doc)
	if err != nil {
		return nil, err
	}
	return &Config{CompilerOptions: doc.CompilerOptions, JSON: string(decoded.JSON)}, nil
}
