package transcript

import (
	"fmt"
	"html"
	"io"
)

const documentHeader = `
<html>
<head>
<title>WhatsApp Conversation</title>
<meta charset="utf-8">
<style type="text/css">
body {
	font-family: Helvetica Neue;
}
td {
	font-size: .8em;
	max-width: 800px;
}
</style>
</head>
<body>
<table>
<thead>
<tr>
<th>Date</th>
<th>From</th>
<th>Content</th>
</tr>
</thead>
<tbody>
`

const documentFooter = `
</tbody>
</table></body>
</html>
`

const rowTemplate = `<tr style="background-color: %s"><td>%s</td><td>%s</td><td>%s</td></tr>`

// Row is one rendered line of a transcript.
type Row struct {
	Time string
	From Speaker
	Body string
}

// documentWriter emits a transcript table. The header is written on creation.
type documentWriter struct {
	w      io.Writer
	escape bool
	err    error
}

func newDocumentWriter(w io.Writer, escape bool) *documentWriter {
	d := &documentWriter{w: w, escape: escape}
	_, d.err = io.WriteString(w, documentHeader)
	return d
}

func (d *documentWriter) WriteRow(r Row) error {
	if d.err != nil {
		return d.err
	}
	label := r.From.Label
	if d.escape {
		label = html.EscapeString(label)
	}
	_, d.err = fmt.Fprintf(d.w, rowTemplate, r.From.Color, r.Time, label, r.Body)
	return d.err
}

// Close writes the footer. It does not close the underlying writer.
func (d *documentWriter) Close() error {
	if d.err != nil {
		return d.err
	}
	_, d.err = io.WriteString(d.w, documentFooter)
	return d.err
}
