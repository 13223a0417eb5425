// Package sh provides an interactive console driving a board step by step.
package sh

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/upshift/pkg/board"
	"github.com/robotalks/upshift/pkg/config"
	"github.com/robotalks/upshift/pkg/periph"
	"github.com/robotalks/upshift/pkg/xcvr"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell   *ishell.Shell
	Console *Console
}

const (
	shellKey = "$shell"
	prompt   = "upshift > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&SendCmd,
		&InjectCmd,
		&StepCmd,
		&StallCmd,
		&OverrunCmd,
		&StatsCmd,
		&FlagsCmd,
		&ResetCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(console *Console) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:   ishell.New(),
		Console: console,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(prompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Print prints v as JSON or with fmt depending on OutputJSON.
func (s *Shell) Print(c *ishell.Context, v interface{}) {
	if s.OutputJSON {
		out, err := json.Marshal(v)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	switch val := v.(type) {
	case fmt.Stringer:
		c.Println(val.String())
	default:
		c.Printf("%+v\n", val)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Println("Type help for commands.")
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

func withUnits(fn func(c *ishell.Context, units []periph.Unit)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if len(c.Args) == 0 {
			c.Err(fmt.Errorf("text expected"))
			return
		}
		fn(c, ParseUnits(strings.Join(c.Args, " ")))
	}
}

func printLine(c *ishell.Context, r *LineResult, err error) {
	if err != nil {
		c.Err(err)
		return
	}
	ShellFrom(c).Print(c, r)
}

var (
	// SendCmd puts text on the line and runs until idle.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "TEXT (\\xNN escapes allowed)",
		Func: withUnits(func(c *ishell.Context, units []periph.Unit) {
			r, err := ShellFrom(c).Console.Send(units)
			printLine(c, r, err)
		}),
	}

	// InjectCmd queues text on the line without advancing time.
	InjectCmd = ishell.Cmd{
		Name:    "inject",
		Aliases: []string{"i"},
		Help:    "TEXT",
		Func: withUnits(func(c *ishell.Context, units []periph.Unit) {
			ShellFrom(c).Console.Inject(units)
		}),
	}

	// StepCmd advances the line.
	StepCmd = ishell.Cmd{
		Name:    "step",
		Aliases: []string{"n"},
		Help:    "[COUNT]",
		Func: func(c *ishell.Context) {
			count := 1
			if len(c.Args) > 0 {
				n, err := strconv.Atoi(c.Args[0])
				if err != nil || n <= 0 {
					c.Err(fmt.Errorf("invalid count %q", c.Args[0]))
					return
				}
				count = n
			}
			r, err := ShellFrom(c).Console.Step(count)
			printLine(c, r, err)
		},
	}

	// StallCmd receives text while the transmitter is stalled.
	StallCmd = ishell.Cmd{
		Name: "stall",
		Help: "TEXT",
		Func: withUnits(func(c *ishell.Context, units []periph.Unit) {
			r, err := ShellFrom(c).Console.Stall(units)
			printLine(c, r, err)
		}),
	}

	// OverrunCmd receives text back to back without servicing.
	OverrunCmd = ishell.Cmd{
		Name: "overrun",
		Help: "TEXT",
		Func: withUnits(func(c *ishell.Context, units []periph.Unit) {
			r, err := ShellFrom(c).Console.Overrun(units)
			printLine(c, r, err)
		}),
	}

	// StatsCmd prints counters.
	StatsCmd = ishell.Cmd{
		Name: "stats",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			s.Print(c, s.Console.Board.Stats())
		},
	}

	// FlagsCmd prints USART flags.
	FlagsCmd = ishell.Cmd{
		Name: "flags",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			s.Print(c, s.Console.Board.USART.Flags())
		},
	}

	// ResetCmd boots a new board.
	ResetCmd = ishell.Cmd{
		Name: "reset",
		Func: func(c *ishell.Context) {
			if err := ShellFrom(c).Console.Reset(); err != nil {
				c.Err(err)
			}
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	conf := config.NewConfig()
	fwConf := conf.MustFirmwareConfig()
	fwConf.Observer = xcvr.ObserveFunc(board.LogEvent)
	console, err := NewConsole(fwConf)
	if err != nil {
		log.Fatalln(err)
	}
	New(console).Run(flag.Args()...)
}
