package cli

import (
	"context"
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/icco/movies/models"
)

// Prompter asks the user for input.
type Prompter interface {
	Select(message string, options []string) (int, error)
	Input(message string) (string, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Select(message string, options []string) (int, error) {
	var idx int
	prompt := &survey.Select{
		Message:  message,
		Options:  options,
		PageSize: len(options),
	}
	if err := survey.AskOne(prompt, &idx); err != nil {
		return 0, err
	}
	return idx, nil
}

func (surveyPrompter) Input(message string) (string, error) {
	var answer string
	if err := survey.AskOne(&survey.Input{Message: message}, &answer); err != nil {
		return "", err
	}
	return answer, nil
}

// errExit ends the menu loop.
var errExit = errors.New("exit")

type menuAction struct {
	label string
	run   func(ctx context.Context) error
}

// Menu is the interactive command dispatcher. Each entry calls one store,
// query or renderer operation for the active user.
type Menu struct {
	app     *App
	prompt  Prompter
	out     *Printer
	user    *models.User
	actions []menuAction
}

// NewMenu builds the dispatcher table for app.
func NewMenu(app *App, prompt Prompter, out *Printer) *Menu {
	m := &Menu{app: app, prompt: prompt, out: out}
	m.actions = []menuAction{
		{"Exit", func(context.Context) error { return errExit }},
		{"List movies", m.list},
		{"Add movie", m.add},
		{"Delete movie", m.delete},
		{"Update movie", m.update},
		{"Stats", m.stats},
		{"Random movie", m.random},
		{"Search movie", m.search},
		{"Movies sorted by rating", m.sorted},
		{"Generate website", m.generate},
		{"Switch user", m.switchUser},
	}
	return m
}

// Run selects a user unless one is active and loops until Exit or an
// interrupt. Operation failures are printed and the loop carries on.
func (m *Menu) Run(ctx context.Context) error {
	if m.user == nil {
		if err := m.switchUser(ctx); err != nil {
			return quietInterrupt(err)
		}
	}

	options := make([]string, len(m.actions))
	for i, a := range m.actions {
		options[i] = a.label
	}

	for {
		choice, err := m.prompt.Select("Menu:", options)
		if err != nil {
			return quietInterrupt(err)
		}
		if choice < 0 || choice >= len(m.actions) {
			m.out.Warn("Invalid choice")
			continue
		}

		err = m.actions[choice].run(ctx)
		switch {
		case errors.Is(err, errExit):
			m.out.Line("Bye!")
			return nil
		case errors.Is(err, terminal.InterruptErr):
			return nil
		case err != nil:
			m.out.Error(err)
		}
		m.out.Line("")
	}
}

// SetUser makes user the active profile.
func (m *Menu) SetUser(user *models.User) {
	m.user = user
}

func quietInterrupt(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return nil
	}
	return err
}

func (m *Menu) switchUser(ctx context.Context) error {
	users, err := m.app.Store.Users(ctx)
	if err != nil {
		return err
	}

	options := make([]string, 0, len(users)+1)
	for _, u := range users {
		options = append(options, u.Name)
	}
	options = append(options, "Create new user")

	for {
		choice, err := m.prompt.Select("Select a user profile:", options)
		if err != nil {
			return err
		}
		if choice >= 0 && choice < len(users) {
			user := users[choice]
			m.user = &user
			m.out.Info("Active user: %s", user.Name)
			return nil
		}

		name, err := m.prompt.Input("Enter a new user:")
		if err != nil {
			return err
		}
		user, created, err := m.app.Store.EnsureUser(ctx, name)
		if err != nil {
			m.out.Error(err)
			continue
		}
		m.user = user
		if created {
			m.out.Success("User '%s' created and selected", user.Name)
		} else {
			m.out.Info("Active user: %s", user.Name)
		}
		return nil
	}
}

func (m *Menu) list(ctx context.Context) error {
	movies, err := m.app.Store.List(ctx, m.user.ID)
	if err != nil {
		return err
	}
	if len(movies) == 0 {
		m.out.Line("No movies yet")
		return nil
	}
	m.out.Line("%d movies in total", len(movies))
	m.out.Movies(movies)
	return nil
}

func (m *Menu) add(ctx context.Context) error {
	title, err := m.prompt.Input("Enter a title:")
	if err != nil {
		return err
	}
	movie, err := m.app.Store.Add(ctx, title, m.user.ID)
	if err != nil {
		return err
	}
	m.out.Success("Movie '%s' added successfully.", movie.Title)
	return nil
}

func (m *Menu) delete(ctx context.Context) error {
	title, err := m.prompt.Input("Enter a movie to delete:")
	if err != nil {
		return err
	}
	removed, err := m.app.Store.Delete(ctx, title, m.user.ID)
	if err != nil {
		return err
	}
	if removed == 0 {
		m.out.Warn("No movie found with title '%s'.", title)
		return nil
	}
	m.out.Success("Movie '%s' deleted successfully.", title)
	return nil
}

func (m *Menu) update(ctx context.Context) error {
	title, err := m.prompt.Input("Enter movie name:")
	if err != nil {
		return err
	}

	movies, err := m.app.Store.List(ctx, m.user.ID)
	if err != nil {
		return err
	}
	if _, ok := movies.ByTitle()[title]; !ok {
		m.out.Warn("Movie %s not found", title)
		return nil
	}

	note, err := m.prompt.Input("Enter movie note:")
	if err != nil {
		return err
	}
	updated, err := m.app.Store.Update(ctx, title, note, m.user.ID)
	if err != nil {
		return err
	}
	if updated == 0 {
		m.out.Warn("No movie found with title '%s'.", title)
		return nil
	}
	m.out.Success("Movie '%s' updated successfully", title)
	return nil
}

func (m *Menu) stats(ctx context.Context) error {
	stats, err := m.app.Engine.Statistics(ctx, m.user.ID)
	if err != nil {
		return err
	}
	m.out.Stats(stats)
	return nil
}

func (m *Menu) random(ctx context.Context) error {
	movie, err := m.app.Engine.RandomPick(ctx, m.user.ID)
	if err != nil {
		return err
	}
	m.out.Line("Random movie:")
	m.out.Movie(*movie)
	return nil
}

func (m *Menu) search(ctx context.Context) error {
	q, err := m.prompt.Input("Enter part of movie name:")
	if err != nil {
		return err
	}
	matches, err := m.app.Engine.Search(ctx, m.user.ID, q)
	if err != nil {
		return err
	}
	m.out.Movies(matches)
	return nil
}

func (m *Menu) sorted(ctx context.Context) error {
	movies, err := m.app.Engine.SortedByRating(ctx, m.user.ID)
	if err != nil {
		return err
	}
	m.out.Movies(movies)
	return nil
}

func (m *Menu) generate(ctx context.Context) error {
	movies, err := m.app.Store.List(ctx, m.user.ID)
	if err != nil {
		return err
	}
	path, err := m.app.Renderer.Generate(m.user.Name, movies)
	if err != nil {
		return err
	}
	m.out.Success("Website for %s was generated successfully: %s", m.user.Name, path)
	return nil
}
