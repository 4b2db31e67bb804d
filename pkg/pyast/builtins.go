package pyast

// Builtins is the fixed set of identifiers the normalizer must never rename:
// names supplied by the Python runtime itself (spec.md §4.1 "Names excluded
// from renaming" — the built-in set). Grounded on
// original_source/ouverture.py's `PYTHON_BUILTINS = set(dir(builtins))`,
// narrowed to the subset that can appear as a bare Name reference in source
// (dunder attributes of the builtins module itself, e.g. `__name__`, are
// omitted since they never appear as freestanding identifiers in a function
// body). The set also holds the conventional method-receiver names "self"
// and "cls", which are not runtime built-ins.
var Builtins = buildBuiltinSet()

func buildBuiltinSet() map[string]bool {
	names := []string{
		"abs", "aiter", "anext", "all", "any", "ascii", "bin", "bool",
		"breakpoint", "bytearray", "bytes", "callable", "chr", "classmethod",
		"compile", "complex", "delattr", "dict", "dir", "divmod", "enumerate",
		"eval", "exec", "filter", "float", "format", "frozenset", "getattr",
		"globals", "hasattr", "hash", "help", "hex", "id", "input", "int",
		"isinstance", "issubclass", "iter", "len", "list", "locals", "map",
		"max", "memoryview", "min", "next", "object", "oct", "open", "ord",
		"pow", "print", "property", "range", "repr", "reversed", "round",
		"set", "setattr", "slice", "sorted", "staticmethod", "str", "sum",
		"super", "tuple", "type", "vars", "zip", "__import__",
		"True", "False", "None", "NotImplemented", "Ellipsis", "__debug__",
		"BaseException", "Exception", "ArithmeticError", "AssertionError",
		"AttributeError", "BlockingIOError", "BrokenPipeError",
		"BufferError", "BytesWarning", "ChildProcessError",
		"ConnectionAbortedError", "ConnectionError", "ConnectionRefusedError",
		"ConnectionResetError", "DeprecationWarning", "EOFError",
		"EnvironmentError", "FileExistsError", "FileNotFoundError",
		"FloatingPointError", "FutureWarning", "GeneratorExit", "IOError",
		"ImportError", "ImportWarning", "IndentationError", "IndexError",
		"InterruptedError", "IsADirectoryError", "KeyError",
		"KeyboardInterrupt", "LookupError", "MemoryError",
		"ModuleNotFoundError", "NameError", "NotADirectoryError",
		"NotImplementedError", "OSError", "OverflowError",
		"PendingDeprecationWarning", "PermissionError", "ProcessLookupError",
		"RecursionError", "ReferenceError", "ResourceWarning",
		"RuntimeError", "RuntimeWarning", "StopAsyncIteration",
		"StopIteration", "SyntaxError", "SyntaxWarning", "SystemError",
		"SystemExit", "TabError", "TimeoutError", "TypeError",
		"UnboundLocalError", "UnicodeDecodeError", "UnicodeEncodeError",
		"UnicodeError", "UnicodeTranslateError", "UnicodeWarning",
		"UserWarning", "ValueError", "Warning", "ZeroDivisionError",
		"self", "cls",
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
