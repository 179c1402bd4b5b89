/*
PURPOSE:
  Embeds the default question set and the example configuration file
  into the binary so a fresh checkout can run and export them without
  any external data.

REQUIREMENTS:
  User-specified:
  - `tokenmeter questions export` writes editable copies to disk.

  Implementation-discovered:
  - embed.FS keeps the assets versioned with the code.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/questions

ERROR HANDLING:
  - N/A (embedded data cannot fail to load at runtime).

IMPLEMENTATION RULES:
  - Assets live under data/ next to this file.

USAGE:
  data, _ := assets.Data.ReadFile("data/questions.yaml")

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/questions/questions.go
  - internal/cli/questions.go

MAINTENANCE:
  - Update data/questions.yaml when the benchmark question set changes.
*/

package assets

import "embed"

//go:embed data
var Data embed.FS

// QuestionsPath is the embedded default question set.
const QuestionsPath = "data/questions.yaml"

// ExampleConfigPath is the embedded example configuration.
const ExampleConfigPath = "data/tokenmeter.example.yaml"
