package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/deppfellow/projects/internal/cli/output"
	"github.com/deppfellow/projects/internal/model"
	"github.com/deppfellow/projects/internal/service"
	"github.com/deppfellow/projects/internal/validation"
	"github.com/shopspring/decimal"
)

// ProjectService is what the console needs from the service layer.
type ProjectService interface {
	AddProject(ctx context.Context, project *model.Project) (*model.Project, error)
	FetchAllProjects(ctx context.Context) ([]model.Project, error)
	FetchProjectByID(ctx context.Context, projectID int) (*model.Project, error)
	ModifyProjectDetails(ctx context.Context, project *model.Project) error
	DeleteProject(ctx context.Context, projectID int) error
}

var _ ProjectService = (*service.ProjectService)(nil)

// maxLineSize bounds one line of console input.
const maxLineSize = 1024 * 1024

var operations = []string{
	"1) Add a project",
	"2) List projects",
	"3) Select a project",
	"4) Update project details",
	"5) Delete a project",
}

// Menu is the interactive loop. It reads one line per prompt from in and
// keeps the currently selected project between actions.
//
// Lines are read on a separate goroutine so a prompt can stop waiting when
// the context is cancelled.
type Menu struct {
	projects ProjectService
	pipeline *Pipeline
	in       io.Reader
	out      *output.Printer

	lines   chan string
	readErr error // set before lines is closed

	current *model.Project
}

// NewMenu builds a menu reading from in and printing to out.
func NewMenu(projects ProjectService, pipeline *Pipeline, in io.Reader, out *output.Printer) *Menu {
	return &Menu{
		projects: projects,
		pipeline: pipeline,
		in:       in,
		out:      out,
	}
}

// Current returns the selected project, or nil.
func (m *Menu) Current() *model.Project {
	return m.current
}

// Run shows the menu until the user enters an empty selection, input ends
// or ctx is cancelled. Errors from actions are printed and the loop
// continues. A read error on the input is printed before exiting.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			m.out.Line("Exiting the menu.")
			return nil
		}

		m.printOperations()

		input, err := m.prompt(ctx, "Enter a menu selection")
		if err != nil || strings.TrimSpace(input) == "" {
			if err != nil && !errors.Is(err, io.EOF) && ctx.Err() == nil {
				m.out.Error(err)
			}
			m.out.Line("Exiting the menu.")
			return nil
		}

		selection, err := validation.ParseOptionalInt("selection", input)
		if err != nil {
			m.out.Error(err)
			continue
		}

		// An action cut short by cancellation just ends the loop.
		if err := m.dispatch(ctx, *selection); err != nil && ctx.Err() == nil {
			m.out.Error(err)
		}
	}
}

func (m *Menu) dispatch(ctx context.Context, selection int) error {
	switch selection {
	case 1:
		return m.pipeline.Run(ctx, "create_project", m.createProject)
	case 2:
		return m.pipeline.Run(ctx, "list_projects", m.listProjects)
	case 3:
		return m.pipeline.Run(ctx, "select_project", m.selectProject)
	case 4:
		return m.pipeline.Run(ctx, "update_project", m.updateProjectDetails)
	case 5:
		return m.pipeline.Run(ctx, "delete_project", m.deleteProject)
	default:
		m.out.Warning("%d is not a valid selection. Try again.", selection)
		return nil
	}
}

func (m *Menu) printOperations() {
	m.out.Section("These are the available selections. Press the Enter key to quit:")
	for _, line := range operations {
		m.out.Line("  %s", line)
	}

	if m.current == nil {
		m.out.Muted("\nYou are not working with a project.")
	} else {
		m.out.Info("You are working with project: %s", m.current)
	}
}

func (m *Menu) createProject(ctx context.Context) error {
	name, err := m.promptText(ctx, "Enter the project name")
	if err != nil {
		return err
	}
	estimatedHours, err := m.promptDecimal(ctx, "estimatedhours", "Enter the estimated hours")
	if err != nil {
		return err
	}
	actualHours, err := m.promptDecimal(ctx, "actualhours", "Enter the actual hours")
	if err != nil {
		return err
	}
	difficulty, err := m.promptInt(ctx, "difficulty", "Enter the project difficulty (1-5)")
	if err != nil {
		return err
	}
	notes, err := m.promptText(ctx, "Enter the project notes")
	if err != nil {
		return err
	}

	project := &model.Project{
		ProjectName:    strings.TrimSpace(name),
		EstimatedHours: estimatedHours,
		ActualHours:    actualHours,
		Difficulty:     difficulty,
		Notes:          validation.ParseOptionalString(notes),
	}

	dbProject, err := m.projects.AddProject(ctx, project)
	if err != nil {
		return err
	}

	m.out.Success("You have successfully created project: %s", dbProject)
	return nil
}

func (m *Menu) listProjects(ctx context.Context) error {
	projects, err := m.projects.FetchAllProjects(ctx)
	if err != nil {
		return err
	}

	m.out.Section("Projects:")
	for _, project := range projects {
		m.out.Line("  %d: %s", project.ProjectID, project.ProjectName)
	}
	return nil
}

func (m *Menu) selectProject(ctx context.Context) error {
	if err := m.listProjects(ctx); err != nil {
		return err
	}

	projectID, err := m.promptID(ctx, "Enter a project ID to select a project")
	if err != nil {
		return err
	}

	// Unselect first so an unknown id leaves nothing selected.
	m.current = nil

	project, err := m.projects.FetchProjectByID(ctx, projectID)
	if err != nil {
		return err
	}

	m.current = project
	return nil
}

func (m *Menu) updateProjectDetails(ctx context.Context) error {
	if m.current == nil {
		m.out.Warning("Please select a project.")
		return nil
	}
	cur := m.current

	name, err := m.promptText(ctx, fmt.Sprintf("Enter the project name [%s]", cur.ProjectName))
	if err != nil {
		return err
	}
	estimatedHours, err := m.promptDecimal(ctx, "estimatedhours",
		fmt.Sprintf("Enter the estimated hours [%s]", model.FormatHours(cur.EstimatedHours)))
	if err != nil {
		return err
	}
	actualHours, err := m.promptDecimal(ctx, "actualhours",
		fmt.Sprintf("Enter the actual hours [%s]", model.FormatHours(cur.ActualHours)))
	if err != nil {
		return err
	}
	difficulty, err := m.promptInt(ctx, "difficulty",
		fmt.Sprintf("Enter the project difficulty (1-5) [%s]", model.FormatInt(cur.Difficulty)))
	if err != nil {
		return err
	}
	notes, err := m.promptText(ctx, fmt.Sprintf("Enter the project notes [%s]", model.FormatString(cur.Notes)))
	if err != nil {
		return err
	}

	// Blank input keeps the current value.
	project := &model.Project{
		ProjectID:      cur.ProjectID,
		ProjectName:    cur.ProjectName,
		EstimatedHours: cur.EstimatedHours,
		ActualHours:    cur.ActualHours,
		Difficulty:     cur.Difficulty,
		Notes:          cur.Notes,
	}
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		project.ProjectName = trimmed
	}
	if estimatedHours.Valid {
		project.EstimatedHours = estimatedHours
	}
	if actualHours.Valid {
		project.ActualHours = actualHours
	}
	if difficulty != nil {
		project.Difficulty = difficulty
	}
	if n := validation.ParseOptionalString(notes); n != nil {
		project.Notes = n
	}

	if err := m.projects.ModifyProjectDetails(ctx, project); err != nil {
		return err
	}

	refreshed, err := m.projects.FetchProjectByID(ctx, cur.ProjectID)
	if err != nil {
		return err
	}
	m.current = refreshed

	m.out.Success("Project successfully updated.")
	return nil
}

func (m *Menu) deleteProject(ctx context.Context) error {
	if err := m.listProjects(ctx); err != nil {
		return err
	}

	projectID, err := m.promptID(ctx, "Enter the ID of the project to delete")
	if err != nil {
		return err
	}

	if err := m.projects.DeleteProject(ctx, projectID); err != nil {
		return err
	}

	m.out.Success("Project %d was deleted successfully.", projectID)

	if m.current != nil && m.current.ProjectID == projectID {
		m.current = nil
	}
	return nil
}

// prompt prints "<text>: " and waits for one line.
//
// It returns io.EOF at end of input, ctx.Err() when ctx is cancelled first
// and the scanner's error if reading failed.
func (m *Menu) prompt(ctx context.Context, text string) (string, error) {
	fmt.Fprintf(m.out.Writer(), "%s: ", text)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.lines == nil {
		m.lines = make(chan string)
		go m.readLines()
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-m.lines:
		if !ok {
			if m.readErr != nil {
				return "", fmt.Errorf("reading input: %w", m.readErr)
			}
			return "", io.EOF
		}
		return line, nil
	}
}

func (m *Menu) readLines() {
	scanner := bufio.NewScanner(m.in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		m.lines <- scanner.Text()
	}
	m.readErr = scanner.Err()
	close(m.lines)
}

// promptText reads a free-form answer. End of input counts as a blank answer.
func (m *Menu) promptText(ctx context.Context, text string) (string, error) {
	input, err := m.prompt(ctx, text)
	if errors.Is(err, io.EOF) {
		return "", nil
	}
	return input, err
}

func (m *Menu) promptInt(ctx context.Context, field, text string) (*int, error) {
	input, err := m.promptText(ctx, text)
	if err != nil {
		return nil, err
	}
	return validation.ParseOptionalInt(field, input)
}

func (m *Menu) promptDecimal(ctx context.Context, field, text string) (decimal.NullDecimal, error) {
	input, err := m.promptText(ctx, text)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return validation.ParseOptionalDecimal(field, input)
}

func (m *Menu) promptID(ctx context.Context, text string) (int, error) {
	input, err := m.promptText(ctx, text)
	if err != nil {
		return 0, err
	}
	return validation.ParseID(input)
}
