// upshift-term attaches the keyboard to a line device, e.g. the pty slave
// printed by upshiftd, and shows what comes back. Ctrl-] quits.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tty "github.com/mattn/go-tty"
)

const escapeKey = 0x1d

var crlf bool

func init() {
	flag.BoolVar(&crlf, "crlf", crlf, "Send CR LF for Enter.")
}

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: upshift-term [-crlf] DEVICE")
		os.Exit(2)
	}

	dev, err := tty.OpenDevice(flag.Arg(0))
	if err != nil {
		log.Fatalln(err)
	}
	defer dev.Close()
	restoreDev, err := dev.Raw()
	if err != nil {
		log.Fatalln(err)
	}
	defer restoreDev()

	kbd, err := tty.Open()
	if err != nil {
		log.Fatalln(err)
	}
	defer kbd.Close()
	restoreKbd, err := kbd.Raw()
	if err != nil {
		log.Fatalln(err)
	}
	defer restoreKbd()

	go func() {
		if _, err := io.Copy(kbd.Output(), dev.Input()); err != nil {
			log.Println(err)
		}
	}()

	fmt.Fprintf(kbd.Output(), "connected to %s, Ctrl-] to quit\r\n", flag.Arg(0))
	for {
		r, err := kbd.ReadRune()
		if err != nil {
			log.Println(err)
			return
		}
		if r == escapeKey {
			return
		}
		data := string(r)
		if r == '\r' && crlf {
			data = "\r\n"
		}
		if _, err = dev.Output().WriteString(data); err != nil {
			log.Println(err)
			return
		}
	}
}
