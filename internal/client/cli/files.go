package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/filekeeper/internal/client/models"
	"github.com/dmitrijs2005/filekeeper/internal/client/services"
	"github.com/dmitrijs2005/filekeeper/internal/filex"
	"github.com/dustin/go-humanize"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid file id %q", s)
	}
	return id, nil
}

func parseListArgs(args []string) (services.ListParams, error) {
	const u = "list [limit] [offset] [sort_by] [order]"

	var p services.ListParams
	if len(args) > 4 {
		return p, usage(u)
	}

	ints := []*int{&p.Limit, &p.Offset}
	for i := 0; i < len(args) && i < 2; i++ {
		n, err := strconv.Atoi(args[i])
		if err != nil {
			return p, usage(u)
		}
		*ints[i] = n
	}
	if len(args) > 2 {
		p.SortBy = args[2]
	}
	if len(args) > 3 {
		p.Order = args[3]
	}
	return p, nil
}

func (a *App) List(ctx context.Context, args []string) error {
	p, err := parseListArgs(args)
	if err != nil {
		return err
	}
	return a.loadPage(ctx, p)
}

func (a *App) loadPage(ctx context.Context, p services.ListParams) error {
	page, err := a.fileService.List(ctx, p)
	if err != nil {
		return err
	}
	a.listParams = p
	a.page = page
	a.printPage(page)
	return nil
}

func (a *App) printPage(page *models.FilePage) {
	if len(page.Files) == 0 {
		fmt.Fprintln(a.out, "No files.")
		return
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSIZE\tUPLOADED")
	for _, f := range page.Files {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			f.ID, f.Filename, humanize.Bytes(uint64(max(f.Size, 0))), formatTime(f.UploadTimestamp.Time))
	}
	w.Flush()

	fmt.Fprintf(a.out, "Showing %d-%d of %d\n", page.Offset+1, page.Offset+len(page.Files), page.Total)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func (a *App) pageLimit() int {
	if a.page != nil && a.page.Limit > 0 {
		return a.page.Limit
	}
	if a.listParams.Limit > 0 {
		return a.listParams.Limit
	}
	return services.DefaultLimit
}

func (a *App) Next(ctx context.Context) error {
	if a.page == nil {
		return a.loadPage(ctx, a.listParams)
	}
	if !a.page.HasNext() {
		fmt.Fprintln(a.out, "Already on the last page.")
		return nil
	}

	p := a.listParams
	p.Offset = a.page.Offset + a.pageLimit()
	return a.loadPage(ctx, p)
}

func (a *App) Prev(ctx context.Context) error {
	if a.page == nil {
		return a.loadPage(ctx, a.listParams)
	}
	if !a.page.HasPrev() {
		fmt.Fprintln(a.out, "Already on the first page.")
		return nil
	}

	p := a.listParams
	p.Offset = max(a.page.Offset-a.pageLimit(), 0)
	return a.loadPage(ctx, p)
}

// refresh reloads the listing on screen, if there is one.
func (a *App) refresh(ctx context.Context) error {
	if a.page == nil {
		return nil
	}
	return a.loadPage(ctx, a.listParams)
}

// progressPrinter redraws one status line per percentage change. The HTTP
// transport calls it from its own goroutine.
type progressPrinter struct {
	mu      sync.Mutex
	a       *App
	name    string
	printed bool
}

func (p *progressPrinter) update(percent int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.a.out, "\rUploading %s: %3d%%", p.name, percent)
	p.printed = true
}

func (p *progressPrinter) done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.printed {
		fmt.Fprintln(p.a.out)
	}
}

func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("upload <path>")
	}
	path := strings.Join(args, " ")

	pp := &progressPrinter{a: a, name: filepath.Base(path)}
	file, err := a.fileService.UploadPath(ctx, path, pp.update)
	pp.done()
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Uploaded %s (id %d, %s)\n", file.Filename, file.ID, humanize.Bytes(uint64(max(file.Size, 0))))
	return a.refresh(ctx)
}

// downloadTarget picks where a download goes: dest if given (inside it
// when it is a directory), else the server's name for the file, else
// file-<id>.
func downloadTarget(dest, suggested string, id int64) string {
	name := filex.SafeName(suggested)
	if name == "" {
		name = fmt.Sprintf("file-%d", id)
	}
	if dest == "" {
		return name
	}
	if fi, err := os.Stat(dest); err == nil && fi.IsDir() {
		return filepath.Join(dest, name)
	}
	return dest
}

func (a *App) Download(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usage("download <id> [dest]")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	var dest string
	if len(args) == 2 {
		dest = args[1]
	}

	dl, err := a.fileService.Download(ctx, id)
	if err != nil {
		return err
	}
	defer dl.Content.Close()

	target := downloadTarget(dest, dl.Filename, id)
	n, err := filex.WriteFile(target, dl.Content)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Saved %s to %s\n", humanize.Bytes(uint64(n)), target)
	return nil
}

func (a *App) Rename(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usage("rename <id> <name>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	file, err := a.fileService.Rename(ctx, id, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Renamed file %d to %s\n", file.ID, file.Filename)
	return a.refresh(ctx)
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("delete <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if err := a.fileService.Delete(ctx, id); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Deleted file %d\n", id)
	// Step back when the last file of a trailing page went away.
	if a.page != nil && len(a.page.Files) == 1 && a.listParams.Offset > 0 {
		a.listParams.Offset = max(a.listParams.Offset-a.pageLimit(), 0)
	}
	return a.refresh(ctx)
}

func (a *App) WhoAmI(_ context.Context) error {
	fmt.Fprintf(a.out, "Logged in as %s\n", a.session.Username())
	if exp, ok := a.session.ExpiresAt(); ok {
		fmt.Fprintf(a.out, "Session expires %s (%s)\n", exp.Local().Format(time.RFC1123), humanize.Time(exp))
	}
	return nil
}
