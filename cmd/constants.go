package cmd

// DefaultProjectConfigFilename describes the default config filename for a given project folder.
const DefaultProjectConfigFilename = "forge.json"

// DefaultCompilationPlatform describes the default compilation platform to use if one is not provided
const DefaultCompilationPlatform = "crytic-compile"

// TargetFlagDescription describes the --target flag shared by commands that compile a project.
const TargetFlagDescription = "target to compile, in a format accepted by the compilation platform in use"
