package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/ncdiff/internal/command"
	"github.com/tfctl/ncdiff/internal/meta"
)

const pageTemplate = `# ncdiff {{ .Name }}

{{ .Usage }}

_Generated {{ .Date }} for ncdiff {{ .Version }}._

## Usage

` + "```" + `
{{ .UsageText }}
` + "```" + `
{{ if .Flags }}
## Flags

| Flag | Description |
| ---- | ----------- |
{{- range .Flags }}
| ` + "`{{ .Syntax }}`" + ` | {{ .Description }} |
{{- end }}
{{ end }}`

type Flag struct {
	Syntax      string
	Description string
}

type TemplateData struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []Flag
	Date      string
	Version   string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: docsgen DIR")
		os.Exit(1)
	}
	folder := filepath.Join(os.Args[1], "commands")
	if err := os.MkdirAll(folder, 0755); err != nil {
		panic(err)
	}

	tmpl := template.Must(template.New("page").Parse(pageTemplate))
	app := command.NewApp(meta.Meta{})

	for _, cmd := range app.Commands {
		data := TemplateData{
			Name:      cmd.Name,
			Usage:     cmd.Usage,
			UsageText: cmd.UsageText,
			Flags:     flags(cmd),
			Date:      time.Now().Format("January 2, 2006"),
			Version:   getVersion(),
		}

		path := filepath.Join(folder, cmd.Name+".md")
		fmt.Println("Generating", path)
		file, err := os.Create(path)
		if err != nil {
			panic(err)
		}
		if err := tmpl.Execute(file, data); err != nil {
			panic(err)
		}
		file.Close()
	}
}

// flags splits each flag's help line into its syntax and description.
func flags(cmd *cli.Command) []Flag {
	var out []Flag
	for _, f := range cmd.Flags {
		syntax, desc, _ := strings.Cut(f.String(), "\t")
		out = append(out, Flag{
			Syntax:      strings.TrimSpace(syntax),
			Description: strings.TrimSpace(desc),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Syntax < out[j].Syntax
	})
	return out
}

// getVersion returns the version string from git tags, stripping the leading
// "v" prefix. Falls back to "dev" if git describe fails.
func getVersion() string {
	out, err := exec.Command("git", "describe", "--tags", "--abbrev=0").Output()
	if err != nil {
		return "dev"
	}

	version := strings.TrimSpace(string(out))
	return strings.TrimPrefix(version, "v")
}
