package embed_data

import _ "embed"

//go:embed prompts/system_prompt.tmpl
var SystemPrompt []byte

//go:embed prompts/no_context_prompt.tmpl
var NoContextPrompt []byte

//go:embed models_details/model_details.json
var ModelDetails []byte

//go:embed tree-sitter/queries/go.scm
var GoQuery []byte

//go:embed tree-sitter/queries/python.scm
var PythonQuery []byte

//go:embed tree-sitter/queries/java.scm
var JavaQuery []byte

//go:embed tree-sitter/queries/javascript.scm
var JavascriptQuery []byte

//go:embed tree-sitter/queries/typescript.scm
var TypescriptQuery []byte
