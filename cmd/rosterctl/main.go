// Command rosterctl lists, shows and adds team members through the roster API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/gov-dx-sandbox/team-roster/internal/roster"
	"github.com/gov-dx-sandbox/team-roster/pkg/client"
	"github.com/joho/godotenv"
)

const usage = `Usage: rosterctl [-api URL] <command> [flags]

Commands:
  list [-search query]                                      list team members
  get <id>                                                  show one member
  add -name N -role R -email E [-phone P] [-bio B] -image F add a member
`

func main() {
	_ = godotenv.Load()

	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	global := flag.NewFlagSet("rosterctl", flag.ContinueOnError)
	global.SetOutput(io.Discard)
	apiURL := global.String("api", "", "roster API base URL (default $ROSTER_API_URL or "+client.DefaultBaseURL+")")
	if err := global.Parse(args); err != nil {
		return usageError(err)
	}

	rest := global.Args()
	if len(rest) == 0 {
		return usageError(errors.New("missing command"))
	}

	api := client.New(*apiURL)
	switch rest[0] {
	case "list":
		return runList(ctx, api, rest[1:], out)
	case "get":
		return runGet(ctx, api, rest[1:], out)
	case "add":
		return runAdd(ctx, api, rest[1:], out)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		return usageError(fmt.Errorf("unknown command %q", rest[0]))
	}
}

func usageError(err error) error {
	return fmt.Errorf("%w\n\n%s", err, usage)
}

func runList(ctx context.Context, api roster.API, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	search := fs.String("search", "", "filter by name or role")
	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}

	view := roster.NewListView(api)
	result := view.Load(ctx)
	if *search != "" {
		result = view.SetQuery(*search)
	}

	switch result.State.Status() {
	case roster.StatusError:
		return errors.New(result.State.Message())
	case roster.StatusEmpty:
		fmt.Fprintln(out, result.EmptyReason.Message())
		return nil
	}

	members, _ := result.State.Data()
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tROLE\tEMAIL")
	for _, m := range members {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.ID, m.Name, m.Role, m.Email)
	}
	return tw.Flush()
}

func runGet(ctx context.Context, api roster.API, args []string, out io.Writer) error {
	if len(args) != 1 {
		return usageError(errors.New("get takes exactly one member id"))
	}

	state := roster.NewDetailView(api).Load(ctx, args[0])
	switch state.Status() {
	case roster.StatusError:
		return errors.New(state.Message())
	case roster.StatusEmpty:
		return errors.New("Member not found")
	}

	m, _ := state.Data()
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", m.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", m.Name)
	fmt.Fprintf(tw, "Role:\t%s\n", m.Role)
	fmt.Fprintf(tw, "Email:\t%s\n", m.Email)
	if m.Phone != "" {
		fmt.Fprintf(tw, "Phone:\t%s\n", m.Phone)
	}
	if m.Bio != "" {
		fmt.Fprintf(tw, "Bio:\t%s\n", m.Bio)
	}
	fmt.Fprintf(tw, "Image:\t%s\n", roster.ImageSource(ctx, api, m.ProfileImage))
	fmt.Fprintf(tw, "Joined:\t%s\n", m.CreatedAt.Local().Format("2 Jan 2006"))
	return tw.Flush()
}

func runAdd(ctx context.Context, api roster.API, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var fields client.NewMember
	fs.StringVar(&fields.Name, "name", "", "full name")
	fs.StringVar(&fields.Role, "role", "", "role in the team")
	fs.StringVar(&fields.Email, "email", "", "email address")
	fs.StringVar(&fields.Phone, "phone", "", "phone number")
	fs.StringVar(&fields.Bio, "bio", "", "short biography")
	imagePath := fs.String("image", "", "profile image file")
	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}

	form := roster.NewMemberForm(api)
	form.SetFields(fields)
	if *imagePath != "" {
		image, err := readImage(*imagePath)
		if err != nil {
			return err
		}
		form.SetImage(image)
	}

	result, err := form.Submit(ctx)
	if err != nil {
		var submitErr *roster.SubmitError
		if errors.As(err, &submitErr) {
			return fmt.Errorf("%s (%s)", submitErr.Message, submitErr.Err)
		}
		return err
	}

	fmt.Fprintln(out, result.Message)
	fmt.Fprintf(out, "ID: %s\n", result.Member.ID)
	return nil
}

func readImage(path string) (*roster.FormImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &roster.FormImage{
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Data:        data,
	}, nil
}
