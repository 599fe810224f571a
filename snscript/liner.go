package snscript

import (
	"log"
	"os"
	"sort"
	"strings"

	"github.com/glycerine/liner"
)

// completionKeywords are offered on tab: the special forms, the
// builtins and the dot commands.
func completionKeywords() []string {
	var c []string
	for _, kw := range Keywords() {
		c = append(c, "("+kw+" ")
	}
	for _, b := range append(StandardBuiltins(nil), ExtensionBuiltins(0)...) {
		c = append(c, "("+b.Name+" ")
	}
	c = append(c, dotCommands...)
	sort.Strings(c)
	return c
}

type Prompter struct {
	prompt   string
	history  string
	prompter *liner.State
}

func NewPrompter(prompt, historyFile string) *Prompter {
	p := &Prompter{
		prompt:   prompt,
		history:  historyFile,
		prompter: liner.NewLiner(),
	}
	p.prompter.SetCtrlCAborts(false)

	words := completionKeywords()
	p.prompter.SetCompleter(func(line string) (c []string) {
		// complete the last open form on the line
		i := strings.LastIndexAny(line, "({ ")
		prefix, word := line[:i+1], line[i+1:]
		if i >= 0 && line[i] == '(' {
			prefix, word = line[:i], line[i:]
		}
		for _, n := range words {
			if strings.HasPrefix(n, word) {
				c = append(c, prefix+n)
			}
		}
		return
	})

	if f, err := os.Open(p.history); err == nil {
		p.prompter.ReadHistory(f)
		f.Close()
	}
	return p
}

func (p *Prompter) Close() {
	defer p.prompter.Close()
	if f, err := os.Create(p.history); err != nil {
		log.Print("Error writing history file: ", err)
	} else {
		p.prompter.WriteHistory(f)
		f.Close()
	}
}

func (p *Prompter) Getline(prompt *string) (line string, err error) {
	if prompt == nil {
		line, err = p.prompter.Prompt(p.prompt)
	} else {
		line, err = p.prompter.Prompt(*prompt)
	}
	if err == nil {
		p.prompter.AppendHistory(line)
		return line, nil
	}
	return "", err
}
