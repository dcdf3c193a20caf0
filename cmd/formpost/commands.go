package main

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formpost/pkg/model"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) runSubmit(cmd *cobra.Command, _ []string) error {
	interactive := a.interactive()
	client, line, err := a.client(interactive)
	if err != nil {
		return err
	}
	defer line.Finish()

	req, err := a.request()
	if err != nil {
		return err
	}
	req.Interactive = interactive

	res, err := client.Submit(cmd.Context(), req)
	if err != nil {
		return err
	}
	line.Finish()
	a.logger.Info("deck saved", zap.String("path", res.Path), zap.Int64("bytes", res.Size), zap.String("request_id", res.RequestID))
	fmt.Fprintln(a.stdout, res.Path)
	return nil
}

func (a *app) runFields(cmd *cobra.Command, _ []string) error {
	client, _, err := a.client(false)
	if err != nil {
		return err
	}
	req, err := a.request()
	if err != nil {
		return err
	}
	form, err := client.LoadForm(cmd.Context(), req)
	if err != nil {
		return err
	}

	return writeFields(a.stdout, form)
}

func (a *app) runHealth(cmd *cobra.Command, _ []string) error {
	client, _, err := a.client(false)
	if err != nil {
		return err
	}
	req, err := a.request()
	if err != nil {
		return err
	}
	if err := client.Health(cmd.Context(), req); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "ok")
	return nil
}

func fieldKind(field model.Field) string {
	kind := string(field.Type)
	if field.Type == model.FieldTypeArray && field.Items != nil {
		kind = "[]" + string(field.Items.Type)
	}
	if len(field.Enum) > 0 {
		options := make([]string, 0, len(field.Enum))
		for _, option := range field.Enum {
			options = append(options, fmt.Sprint(option))
		}
		kind += " (" + strings.Join(options, "|") + ")"
	}
	return kind
}

func defaultText(field model.Field) string {
	if field.Default == nil {
		return "-"
	}
	return fmt.Sprint(field.Default)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
