// Command formpost fills the deck generation form, posts it and saves the
// returned presentation.
//
//	formpost --field text=@slides.md --file template_file=brand.pptx
//	formpost fields
//	formpost health --server https://decks.example.com
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := newApp(os.Stdin, os.Stdout, os.Stderr).execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
