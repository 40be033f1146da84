package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jaspreet-dot-casa/desktop-setup/pkg/doctor"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/provision"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/validation"
)

// FormatItem renders one report line.
func FormatItem(item provision.ItemResult) string {
	var icon string
	switch item.Status {
	case provision.StatusSucceeded:
		icon = SuccessStyle.Render(IconOK)
	case provision.StatusFailed:
		icon = ErrorStyle.Render(IconFail)
	case provision.StatusSkipped:
		icon = DimStyle.Render(IconSkip)
	default:
		icon = InfoStyle.Render(IconPlanned)
	}

	line := fmt.Sprintf("%s %s %s", icon, PhaseStyle.Render(string(item.Phase)), item.Name)
	switch {
	case item.Status == provision.StatusFailed:
		line += " " + ErrorStyle.Render(failureDetail(item))
	case item.Message != "":
		line += " " + DimStyle.Render("("+item.Message+")")
	}
	return line
}

func failureDetail(item provision.ItemResult) string {
	if item.Command == nil {
		return item.Message
	}
	detail := fmt.Sprintf("exit %d", item.Command.ExitCode)
	if diag := item.Command.Diagnostic(); diag != "" {
		// Only the last line; apt prints progress before the error.
		lines := strings.Split(diag, "\n")
		detail += ": " + strings.TrimSpace(lines[len(lines)-1])
	}
	return detail
}

// RenderReport writes a full provision report.
func RenderReport(w io.Writer, report *provision.Report) {
	title := "Provision report"
	if report.DryRun {
		title = "Provision plan (dry run)"
	}
	fmt.Fprintln(w, TitleStyle.Render(title))

	for _, item := range report.Items {
		fmt.Fprintln(w, FormatItem(item))
	}
	fmt.Fprintln(w)
	RenderSummary(w, report)
}

// RenderSummary writes the one-line summary of a report.
func RenderSummary(w io.Writer, report *provision.Report) {
	s := report.Summary()
	if report.DryRun {
		fmt.Fprintf(w, "%s %d planned steps\n", InfoStyle.Render(IconPlanned), s.Planned)
		return
	}

	parts := []string{
		SuccessStyle.Render(fmt.Sprintf("%d succeeded", s.Succeeded)),
		DimStyle.Render(fmt.Sprintf("%d skipped", s.Skipped)),
	}
	failed := fmt.Sprintf("%d failed", s.Failed)
	if s.Failed > 0 {
		failed = ErrorStyle.Render(failed)
	}
	parts = append(parts, failed)

	fmt.Fprintf(w, "%s in %s  %s\n", strings.Join(parts, ", "), report.Duration().Round(time.Second), DimStyle.Render("run "+report.ID))
}

// RenderHistory writes one line per stored report.
func RenderHistory(w io.Writer, reports []*provision.Report) {
	if len(reports) == 0 {
		fmt.Fprintln(w, DimStyle.Render("No provision runs recorded yet."))
		return
	}

	for _, r := range reports {
		s := r.Summary()
		icon := SuccessStyle.Render(IconOK)
		if s.Failed > 0 {
			icon = ErrorStyle.Render(IconFail)
		}
		kind := ""
		if r.DryRun {
			kind = " (dry run)"
		}
		fmt.Fprintf(w, "%s %s  %s  %s%s  %d ok / %d skipped / %d failed\n",
			icon,
			shortID(r.ID),
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.Manifest,
			kind,
			s.Succeeded, s.Skipped, s.Failed,
		)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// RenderValidation writes validation issues and a count line.
func RenderValidation(w io.Writer, result *validation.Result) {
	for _, issue := range result.Issues {
		icon := ErrorStyle.Render(IconFail)
		if issue.Severity == validation.SeverityWarning {
			icon = WarningStyle.Render(IconWarn)
		}
		location := issue.File
		if issue.Field != "" {
			location += ": " + issue.Field
		}
		fmt.Fprintf(w, "%s %s %s\n", icon, DimStyle.Render(location), issue.Message)
	}

	if len(result.Issues) == 0 {
		fmt.Fprintln(w, SuccessStyle.Render(IconOK+" manifest is valid"))
		return
	}
	fmt.Fprintf(w, "\n%d error(s), %d warning(s)\n", result.ErrorCount(), result.WarningCount())
}

// RenderDoctor writes dependency check groups.
func RenderDoctor(w io.Writer, groups []doctor.CheckGroup) {
	for _, group := range groups {
		fmt.Fprintln(w, TitleStyle.Render(group.Name))
		if group.Description != "" {
			fmt.Fprintln(w, SubtitleStyle.Render(group.Description))
		}
		for _, check := range group.Checks {
			var icon string
			switch check.Status {
			case doctor.StatusOK:
				icon = SuccessStyle.Render(IconOK)
			case doctor.StatusWarning:
				icon = WarningStyle.Render(IconWarn)
			default:
				icon = ErrorStyle.Render(IconFail)
			}
			fmt.Fprintf(w, "  %s %-20s %s\n", icon, check.Name, DimStyle.Render(check.Message))
			if check.Status == doctor.StatusMissing && check.FixCommand != nil {
				fmt.Fprintf(w, "      %s %s\n", InfoStyle.Render("fix:"), check.FixCommand.String())
			}
		}
		fmt.Fprintln(w)
	}

	s := doctor.GetSummary(groups)
	fmt.Fprintf(w, "%d ok, %d missing, %d warnings, %d errors\n", s.OK, s.Missing, s.Warnings, s.Errors)
}
