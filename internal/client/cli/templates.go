package cli

import "text/template"

const documentTemplate = `Key:      {{.Key}}
Type:     {{.Type}}
Version:  {{.Version}}
{{- if .Dirty}}
Status:   pending sync
{{- else}}
Status:   synced
{{- end}}
Updated:  {{.UpdatedAt.Format "2006-01-02T15:04:05Z07:00"}}
{{- if not .LastSyncedAt.IsZero}}
Synced:   {{.LastSyncedAt.Format "2006-01-02T15:04:05Z07:00"}}
{{- end}}

{{.Body}}
`

const syncTemplate = `{{- if .Offline}}Offline: sync skipped, changes stay queued.
{{- else if .Reentrant}}A sync cycle is already running.
{{- else}}Delivered operations: {{.Delivered}}
Pushed patches:       {{.Pushed}}
Pulled patches:       {{.Pulled}}
Applied:              {{.Applied}}
{{- if .Conflicts}}
Conflicts resolved:   {{.Conflicts}}
{{- end}}
{{- if .Skipped}}
Skipped (malformed):  {{.Skipped}}
{{- end}}
{{- if .Aborted}}
Patch exchange failed, will retry on the next cycle.
{{- end}}
{{- if .Stuck}}
Queue head exhausted its retries. Run 'offsync queue retry' or 'offsync queue drop <reason>'.
{{- end}}
{{- end}}
`

var (
	documentTmpl = template.Must(template.New("document").Parse(documentTemplate))
	syncTmpl     = template.Must(template.New("sync").Parse(syncTemplate))
)
