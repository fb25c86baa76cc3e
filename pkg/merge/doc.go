// Package merge fills Microsoft Word documents (DOCX) with data.
//
// A template is an ordinary .docx file whose text contains placeholders.
// Rendering resolves the placeholders against a data tree, repeats loop
// blocks once per element of a bound array, and can swap embedded images for
// other ones. Everything else in the package is copied to the output
// unchanged.
//
// # Quick Start
//
//	tmpl, err := merge.OpenFile("template.docx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tmpl.BindValue(map[string]any{
//	    "exam": map[string]any{"subject": "Math", "level": "1-A form"},
//	    "students": []map[string]any{
//	        {"first": "Ivan", "last": "Ivanov"},
//	        {"first": "Petr", "last": "Petrov"},
//	    },
//	})
//	tmpl.AddImage("image1.png", merge.FileSource("logo.png"))
//
//	diags, err := tmpl.Save("output.docx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, d := range diags {
//	    log.Printf("warning: %v", d)
//	}
//
// Data can also be bound from JSON, YAML or TOML with BindData and BindFile.
//
// # Template Syntax
//
//	{{exam.subject}}                  - Value at a dot path
//	{{#each students}}...{{/each}}    - Repeat a block per array element
//	{{first}}                         - Field of the current element, inside a block
//	{{this}}                          - The element itself, for arrays of scalars
//	{{#students}}                     - Length of an array, object or string
//	{{upper exam.subject}}            - Upper-cased value
//	{{lower exam.subject}}            - Lower-cased value
//
// Placeholders may be split across runs by Word (for example when part of
// the text was edited or spell checked); they are still recognized.
// Placeholders with no bound value are left in the output as written.
//
// Loop blocks do not nest. A paragraph that holds a loop directive is
// removed from the output, so directives are best placed in paragraphs of
// their own, with the repeated content in between.
//
// # Error Handling
//
// Failures to read the template, read a replacement image, or write the
// output abort the render:
//
//   - PackageError: unreadable package or missing word/document.xml
//   - PartEncodingError: a document part is not UTF-8
//   - MediaSourceError: a replacement image cannot be read
//
// A loop directive that names an unbound array, nests, or is never closed
// leaves its whole part unexpanded and is reported as a LoopDiagnostic. With
// Config.StrictMode these are returned as a *StrictModeError.
//
// # Thread Safety
//
// A Package is immutable and can be shared. A Template is not safe for
// concurrent use. The Engine and its cache are safe for concurrent use.
package merge
