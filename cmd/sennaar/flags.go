package main

import "github.com/spf13/pflag"

// addClangFlags registers the flags that turn into libclang arguments.
func addClangFlags(fs *pflag.FlagSet) {
	fs.StringArrayP("include", "I", nil, "add a directory to the include search path")
	fs.StringArrayP("define", "D", nil, "predefine a macro (NAME or NAME=VALUE)")
	fs.StringArray("clang-arg", nil, "pass an argument to libclang verbatim")
}

// clangArgs renders -I and -D before the verbatim arguments.
func clangArgs(fs *pflag.FlagSet) []string {
	var out []string
	includes, _ := fs.GetStringArray("include")
	for _, dir := range includes {
		out = append(out, "-I"+dir)
	}
	defines, _ := fs.GetStringArray("define")
	for _, def := range defines {
		out = append(out, "-D"+def)
	}
	extra, _ := fs.GetStringArray("clang-arg")
	return append(out, extra...)
}
