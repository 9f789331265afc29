package diag

// Severity is how serious a diagnostic is; only Error affects exit status
// and suppresses IR construction (§7).
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Kind enumerates the fixed diagnostic taxonomy from §7. Every diagnostic
// recorded by the parser or semantic analyzer carries exactly one Kind.
type Kind int

const (
	// Lexical
	UnterminatedString Kind = iota
	UnterminatedComment
	InvalidCharacter

	// Syntactic
	UnexpectedToken
	ExpectedToken
	ExpectedIdentifier
	ExpectedSemicolon
	DeclaresNothing
	IDAlreadySpecified

	// Declaration
	DuplicateDeclarationSpecifier
	ConflictingDeclarationSpecifier
	InvalidStorageClass
	MissingTypeSpecifier
	RestrictOnNonPointer
	TypedefWithoutName
	ExternVariableInitialization

	// Type
	UnknownTypeName
	IllTypedSignCombination
	InvalidTypeComposition
	SizeOfIncompleteType
	NonIntegerArraySize
	BitFieldWidthInvalid
	BitFieldTypeInvalid
	FieldNonConstantSize
	VLAAtFileScope
	VLAWithStaticDuration
	NestedFunctionDeclarator

	// Reference
	UndeclaredIdentifier
	UseWithDifferentTag
	Redefinition
	LabelRedefinition
	UndeclaredLabel

	// Control flow
	SwitchLabelOutsideSwitch
	BreakOutsideLoopOrSwitch
	ContinueOutsideLoop
	NonIntegerSwitchArgument
	DuplicateCase
	MultipleDefault

	// Evaluation
	ExpectedConstantExpression
	ExpectedIntegerConstantExpression
	ArrayDesignatorNegative
	FieldDesignatorOnNonStruct

	// Conversion
	IncompatibleAssignment
	IncompatibleCast
	RefOfBitField
	RefOfRegister

	// Function
	FirstVaArgNotVaList
	VoidParameterWithOthers
	UnboundVLAInDefinition
	ParameterBeforeEllipsis
)

// defaultSeverity is the severity a Kind carries unless report() overrides
// it explicitly (a handful of kinds, e.g. redefinition with equal types,
// are downgraded to Warning at the call site instead of here).
var defaultSeverity = map[Kind]Severity{
	UseWithDifferentTag: Warning,
}

// Severity returns k's default severity.
func (k Kind) Severity() Severity {
	if s, ok := defaultSeverity[k]; ok {
		return s
	}
	return Error
}

var names = map[Kind]string{
	UnterminatedString:  "unterminated_string",
	UnterminatedComment: "unterminated_comment",
	InvalidCharacter:    "invalid_character",

	UnexpectedToken:     "unexpected_token",
	ExpectedToken:       "expected_token",
	ExpectedIdentifier:  "expected_identifier",
	ExpectedSemicolon:   "expected_semicolon",
	DeclaresNothing:     "declares_nothing",
	IDAlreadySpecified:  "id_already_specified",

	DuplicateDeclarationSpecifier:   "duplicate_declaration_specifier",
	ConflictingDeclarationSpecifier: "conflicting_declaration_specifier",
	InvalidStorageClass:             "invalid_storage_class",
	MissingTypeSpecifier:            "missing_type_specifier",
	RestrictOnNonPointer:            "restrict_on_non_pointer",
	TypedefWithoutName:              "typedef_without_name",
	ExternVariableInitialization:    "extern_variable_initialization",

	UnknownTypeName:          "unknown_type_name",
	IllTypedSignCombination:  "ill_typed_sign_combination",
	InvalidTypeComposition:   "invalid_type_composition",
	SizeOfIncompleteType:     "sizeof_incomplete_type",
	NonIntegerArraySize:      "non_integer_array_size",
	BitFieldWidthInvalid:     "bitfield_width_invalid",
	BitFieldTypeInvalid:      "bitfield_type_invalid",
	FieldNonConstantSize:     "field_non_constant_size",
	VLAAtFileScope:           "vla_at_file_scope",
	VLAWithStaticDuration:    "vla_with_static_duration",
	NestedFunctionDeclarator: "nested_function_declarator",

	UndeclaredIdentifier: "undeclared_identifier",
	UseWithDifferentTag:  "use_with_different_tag",
	Redefinition:         "redefinition",
	LabelRedefinition:    "label_redefinition",
	UndeclaredLabel:      "undeclared_label",

	SwitchLabelOutsideSwitch: "switch_label_outside_switch",
	BreakOutsideLoopOrSwitch: "break_outside_loop_or_switch",
	ContinueOutsideLoop:      "continue_outside_loop",
	NonIntegerSwitchArgument: "non_integer_switch_argument",
	DuplicateCase:            "duplicate_case",
	MultipleDefault:          "multiple_default",

	ExpectedConstantExpression:        "expected_constant_expression",
	ExpectedIntegerConstantExpression: "expected_integer_constant_expression",
	ArrayDesignatorNegative:           "array_designator_negative",
	FieldDesignatorOnNonStruct:        "field_designator_on_non_struct",

	IncompatibleAssignment: "incompatible_assignment",
	IncompatibleCast:       "incompatible_cast",
	RefOfBitField:          "ref_of_bitfield",
	RefOfRegister:          "ref_of_register",

	FirstVaArgNotVaList:     "first_va_arg_not_va_list",
	VoidParameterWithOthers: "void_parameter_with_others",
	UnboundVLAInDefinition:  "unbound_vla_in_definition",
	ParameterBeforeEllipsis: "parameter_before_ellipsis",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "unknown_diagnostic_kind"
}
