package test

import (
	"dlbuild/pkg/model"
)

// SampleRecipe returns a customised recipe for testing.
func SampleRecipe() *model.Recipe {
	return &model.Recipe{
		Compiler:          "clang++",
		IncludeDir:        "../../include",
		Source:            "demo.cpp",
		Object:            "demo.o",
		Output:            "demo",
		Library:           "dl",
		ExtraCompileFlags: []string{"-Wall", "-O2"},
		ExtraLinkFlags:    []string{"-rdynamic"},
	}
}

// SampleRecipeYAML returns SampleRecipe as YAML.
func SampleRecipeYAML() string {
	return `compiler: clang++
include-dir: ../../include
source: demo.cpp
object: demo.o
output: demo
library: dl
extra-compile-flags:
  - -Wall
  - -O2
extra-link-flags:
  - -rdynamic
`
}

// SampleRecipeTOML returns SampleRecipe as TOML.
func SampleRecipeTOML() string {
	return `compiler = "clang++"
include-dir = "../../include"
source = "demo.cpp"
object = "demo.o"
output = "demo"
library = "dl"
extra-compile-flags = ["-Wall", "-O2"]
extra-link-flags = ["-rdynamic"]
`
}

// InvalidRecipeYAML returns YAML with an unknown field.
func InvalidRecipeYAML() string {
	return `compiler: g++
linker: ld
`
}

// SampleSourceCPP is a minimal program that exercises the dynamic loader.
func SampleSourceCPP() string {
	return `#include <dlfcn.h>
#include <cstdio>
#include "sample.h"

int main() {
    void* self = dlopen(nullptr, RTLD_NOW);
    std::printf("%s %s\n", SAMPLE_GREETING, self ? "loaded" : "failed");
    if (self) {
        dlclose(self);
    }
    return 0;
}
`
}

// SampleHeader is the header SampleSourceCPP includes.
func SampleHeader() string {
	return "#define SAMPLE_GREETING \"hello from\"\n"
}
