package treesitter

// Capture names are theme syntax keys. A dotted name falls back to its
// first component when the theme has no entry for it.

const goHighlightQuery = `
(comment) @comment
[(interpreted_string_literal) (raw_string_literal) (rune_literal)] @string
(escape_sequence) @string.escape
[(int_literal) (float_literal) (imaginary_literal)] @number

[
  "break" "case" "chan" "const" "continue" "default" "defer" "else"
  "fallthrough" "for" "func" "go" "goto" "if" "import" "interface"
  "map" "package" "range" "return" "select" "struct" "switch"
  "type" "var"
] @keyword
(label_name) @keyword.label

[(nil) (true) (false) (iota)] @constant.builtin
(const_spec name: (identifier) @constant)

((identifier) @type.builtin
  (#match? @type.builtin "^(any|bool|byte|comparable|complex64|complex128|error|float32|float64|int|int8|int16|int32|int64|rune|string|uint|uint8|uint16|uint32|uint64|uintptr)$"))
((identifier) @builtin
  (#match? @builtin "^(append|cap|clear|close|complex|copy|delete|imag|len|make|max|min|new|panic|print|println|real|recover)$"))

(type_spec name: (type_identifier) @type.definition)
(type_identifier) @type
(package_identifier) @type.package
(type_parameter_declaration (identifier) @type.parameter)

(function_declaration name: (identifier) @function)
(method_declaration name: (field_identifier) @function.method)
(method_elem (field_identifier) @function.method)
(call_expression function: (identifier) @function.call)
(call_expression function: (selector_expression field: (field_identifier) @function.call))

(field_identifier) @field
(parameter_declaration (identifier) @variable.parameter)
(variadic_parameter_declaration (identifier) @variable.parameter)
(blank_identifier) @variable
(identifier) @variable

[
  "+" "-" "*" "/" "%" "==" "!=" "<=" ">=" "<" ">" "=" ":=" "&&" "||"
  "!" "&" "|" "^" "<<" ">>" "&^" "+=" "-=" "*=" "/=" "%=" "&=" "|="
  "^=" "<<=" ">>=" "&^=" "<-" "++" "--" "..."
] @operator
["(" ")" "[" "]" "{" "}"] @punctuation.bracket
["." "," ";" ":"] @punctuation.delimiter
`

const yamlHighlightQuery = `
(comment) @comment
[(string_scalar) (double_quote_scalar) (single_quote_scalar)] @string
[(integer_scalar) (float_scalar)] @number
[(null_scalar) (boolean_scalar)] @constant.builtin
(block_mapping_pair key: (_) @field)
(flow_pair key: (_) @field)
[(anchor_name) (alias_name)] @keyword.reference
(tag) @type
`

const tomlHighlightQuery = `
(comment) @comment
(string) @string
[(integer) (float)] @number
(boolean) @constant.builtin
[(local_date) (local_time) (local_date_time) (offset_date_time)] @string.special
(table [(bare_key) (quoted_key) (dotted_key)] @type)
(table_array_element [(bare_key) (quoted_key) (dotted_key)] @type)
[(bare_key) (quoted_key)] @field
"=" @operator
["[" "]" "[[" "]]" "{" "}"] @punctuation.bracket
["." ","] @punctuation.delimiter
`

const bashHighlightQuery = `
(comment) @comment
[(string) (raw_string) (heredoc_body)] @string
(number) @number
(function_definition name: (word) @function)
(command_name) @function.call
[(variable_name) (special_variable_name)] @variable
[
  "if" "then" "else" "elif" "fi" "case" "esac" "for" "while" "until"
  "do" "done" "in" "function" "select" "local" "export" "readonly"
  "declare" "typeset" "unset"
] @keyword
["&&" "||" "|" "&" "<" ">" ">>" "<<" "<<<" "$" "${"] @operator
["(" ")" "((" "))" "[" "]" "[[" "]]" "{" "}"] @punctuation.bracket
[";" ";;"] @punctuation.delimiter
`
