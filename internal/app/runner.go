// Package app drives one interactive session against the file server: it
// checks the server, authenticates, lists a group's files and saves them.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"

	"telegram-files-client/internal/api"
	"telegram-files-client/internal/locales"
	"telegram-files-client/internal/output"
	"telegram-files-client/internal/prompt"
	"telegram-files-client/internal/reporting"
)

// FileClient is the part of api.Client the runner uses.
type FileClient interface {
	BaseURL() string
	CheckStatus(ctx context.Context) *api.ServerStatus
	SetupAPI(ctx context.Context, apiID, apiHash string) (api.Response, error)
	SendCode(ctx context.Context, phoneNumber string) (api.Response, error)
	VerifyCode(ctx context.Context, code string) (*api.VerifyCodeResult, error)
	VerifyPassword(ctx context.Context, password string) (api.Response, error)
	GetGroups(ctx context.Context) ([]api.Group, error)
	GetGroupFiles(ctx context.Context, groupID string) ([]api.RemoteFile, error)
	CheckFileAccess(ctx context.Context, fileID string) bool
}

// Runner holds everything a session needs.
type Runner struct {
	Client    FileClient
	Prompter  prompt.Prompter
	Reporter  reporting.Reporter
	Out       io.Writer
	Localizer *i18n.Localizer

	// OutputDir receives the JSON document. Empty means the working directory.
	OutputDir string
	// Now stamps the document and names its file. Defaults to time.Now.
	Now func() time.Time
	// CheckAccess probes each listed file's stream with HEAD.
	CheckAccess bool
}

// Run executes the session. Failures, including panics, are reported to the
// user on Out and never returned.
func (r *Runner) Run(ctx context.Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Panic recovered in Runner.Run: %v\n%s", rec, debug.Stack())
			if r.Reporter != nil {
				r.Reporter.Recover(rec)
			}
			r.println()
			r.printMsg("MsgErrorOccurred", map[string]interface{}{"Error": fmt.Sprint(rec)})
			err = nil
		}
	}()

	if runErr := r.run(ctx); runErr != nil {
		r.handleError(ctx, runErr)
	}
	return nil
}

func (r *Runner) run(ctx context.Context) error {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	doc := output.NewDocument(r.Client.BaseURL(), now())

	r.printMsg("MsgCheckingStatus", nil)
	status := r.Client.CheckStatus(ctx)
	if status == nil {
		r.printMsg("MsgServerUnreachable", nil)
		return nil
	}
	doc.ServerStatus = status
	r.printMsg("MsgServerStatus", map[string]interface{}{"Status": status.String()})

	if err := r.ensureCredentials(ctx, status); err != nil {
		return err
	}
	if err := r.ensureAuthenticated(ctx, status); err != nil {
		return err
	}

	r.println()
	r.printMsg("MsgFetchingGroups", nil)
	groups, err := r.Client.GetGroups(ctx)
	if err != nil {
		return fmt.Errorf("failed to get groups: %w", err)
	}
	r.println()
	r.printMsg("MsgAvailableGroups", nil)
	for i, g := range groups {
		r.printMsg("MsgGroupLine", map[string]interface{}{"Index": i + 1, "Name": g.Name, "ID": g.ID.String()})
	}

	r.println()
	choice, err := r.ask(ctx, "PromptGroupNumber")
	if err != nil {
		return err
	}
	index, err := strconv.Atoi(strings.TrimSpace(choice))
	if err != nil {
		return fmt.Errorf("invalid group number %q: %w", choice, err)
	}
	index--
	if index < 0 || index >= len(groups) {
		log.Printf("[Runner] Group choice %d out of range (1-%d), nothing to list", index+1, len(groups))
		return nil
	}
	selected := groups[index]

	r.println()
	r.printMsg("MsgFetchingFiles", map[string]interface{}{"Name": selected.Name})
	group := output.NewGroup(selected)
	groupID := selected.ID.String()

	files, err := r.Client.GetGroupFiles(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to get files of group %s: %w", groupID, err)
	}
	if len(files) == 0 {
		r.printMsg("MsgNoFiles", nil)
	} else {
		r.println()
		r.printMsg("MsgFoundFiles", map[string]interface{}{"Count": len(files)})
		for _, f := range files {
			group.Files = append(group.Files, output.FormatFileInfo(f, r.Client.BaseURL(), groupID))
		}
		if r.CheckAccess {
			r.checkAccess(ctx, group.Files)
		}
	}
	doc.Groups = append(doc.Groups, group)

	if r.OutputDir != "" {
		if err := os.MkdirAll(r.OutputDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	filename := output.OutputFilename(r.OutputDir, now())
	if err := output.SaveJSONOutput(doc, filename); err != nil {
		return err
	}
	r.println()
	r.printMsg("MsgDataSaved", map[string]interface{}{"Filename": filename})

	r.println()
	r.printMsg("MsgFilesInGroup", nil)
	output.WriteSummary(r.Out, r.Localizer, group.Files)
	return nil
}

func (r *Runner) ensureCredentials(ctx context.Context, status *api.ServerStatus) error {
	r.println()
	if status.Setup {
		r.printMsg("MsgCredentialsConfigured", nil)
		return nil
	}

	r.printMsg("MsgSettingUpCredentials", nil)
	apiID, err := r.ask(ctx, "PromptAPIID")
	if err != nil {
		return err
	}
	apiHash, err := r.ask(ctx, "PromptAPIHash")
	if err != nil {
		return err
	}
	if _, err := r.Client.SetupAPI(ctx, apiID, apiHash); err != nil {
		return fmt.Errorf("failed to set up API credentials: %w", err)
	}
	return nil
}

func (r *Runner) ensureAuthenticated(ctx context.Context, status *api.ServerStatus) error {
	r.println()
	if status.IsAuthenticated {
		r.printMsg("MsgAlreadyAuthenticated", nil)
		return nil
	}

	r.printMsg("MsgStartingAuth", nil)
	phone, err := r.ask(ctx, "PromptPhone")
	if err != nil {
		return err
	}
	if _, err := r.Client.SendCode(ctx, phone); err != nil {
		return fmt.Errorf("failed to send code: %w", err)
	}
	r.printMsg("MsgCodeSent", nil)

	code, err := r.ask(ctx, "PromptCode")
	if err != nil {
		return err
	}
	result, err := r.Client.VerifyCode(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to verify code: %w", err)
	}

	if result.NeedsPassword {
		r.println()
		r.printMsg("MsgTwoFactorEnabled", map[string]interface{}{"Hint": result.Hint})
		password, err := r.ask(ctx, "PromptPassword")
		if err != nil {
			return err
		}
		if _, err := r.Client.VerifyPassword(ctx, password); err != nil {
			return fmt.Errorf("failed to verify password: %w", err)
		}
	}

	r.println()
	r.printMsg("MsgAuthSuccess", nil)
	return nil
}

func (r *Runner) checkAccess(ctx context.Context, files []output.FormattedFile) {
	r.println()
	r.printMsg("MsgCheckingAccess", nil)
	for _, f := range files {
		if r.Client.CheckFileAccess(ctx, f.ID.String()) {
			r.printMsg("MsgAccessGranted", map[string]interface{}{"Name": f.Name})
		} else {
			r.printMsg("MsgAccessDenied", map[string]interface{}{"Name": f.Name})
		}
	}
}

// handleError prints the message for err's category. Only failures that did
// not come from the server or the user are sent to the reporter.
func (r *Runner) handleError(ctx context.Context, err error) {
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, prompt.ErrInputClosed) || ctx.Err() != nil:
		log.Printf("[Runner] Stopped: %v", err)
		r.println()
		r.printMsg("MsgCancelled", nil)
	case api.IsServerError(err):
		log.Printf("[Runner] Server error: %v", err)
		r.printMsg("MsgErrorCommunicating", map[string]interface{}{"Error": err.Error()})
	default:
		r.printMsg("MsgErrorOccurred", map[string]interface{}{"Error": err.Error()})
		log.Printf("[Runner] Unexpected error: %v\n%s", err, debug.Stack())
		if r.Reporter != nil {
			r.Reporter.CaptureException(err)
		}
	}
}

func (r *Runner) ask(ctx context.Context, msgID string) (string, error) {
	return r.Prompter.Ask(ctx, r.msg(msgID, nil))
}

func (r *Runner) msg(msgID string, data map[string]interface{}) string {
	return locales.GetMessage(r.Localizer, msgID, data, nil)
}

func (r *Runner) printMsg(msgID string, data map[string]interface{}) {
	fmt.Fprintln(r.Out, r.msg(msgID, data))
}

func (r *Runner) println() {
	fmt.Fprintln(r.Out)
}
