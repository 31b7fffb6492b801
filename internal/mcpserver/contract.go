package mcpserver

// AuthoringContract describes the canonical Markdown format that documents
// must follow to convert cleanly into Confluence pages.
const AuthoringContract = `# Documentation Format Contract

Every Markdown document meant for Confluence conversion MUST follow this
structure.

## Structure

` + "```" + `markdown
---
title: Human-readable page title    # REQUIRED: becomes the Confluence page title
author_keys:                        # OPTIONAL: ordered (user key, designation) pairs
  - [ff8081816e50ba3a016e51, Tech Lead]
  - [ff8081816e50ba3a016e52, Engineer]
---

Body text in standard Markdown.
` + "```" + `

## Rules

1. **YAML front matter is delimited by ` + "`---`" + ` lines.** The first marker
   enters metadata mode, the second exits it.
2. **` + "`title`" + ` is required.** Documents without it are skipped during
   conversion.
3. **Cross-references** link to other documents by relative path with the
   ` + "`.md`" + ` extension: ` + "`[Setup guide](../guides/setup.md)`" + `. The link resolves
   to the target page's title on Confluence.
4. **Images and attachments** live in the ` + "`images/`" + ` directory next to the
   document: ` + "`![caption](images/diagram.png)`" + `. They are uploaded as page
   attachments.
5. **Heading links** use bare fragments: ` + "`[jump](#section \"Section\")`" + `.
6. **Alert boxes** use the custom delimiters, each on its own paragraph for
   block form or wrapping a paragraph for inline form:
   - ` + "`~:` / `:~`" + ` for info
   - ` + "`~%` / `%~`" + ` for tip
   - ` + "`~?` / `?~`" + ` for note
   - ` + "`~!` / `!~`" + ` for warning
7. **Code blocks** keep their fence language; unlabeled fences render with
   the ` + "`text`" + ` language. A literal ` + "`]]>`" + ` inside a code block is not
   supported.

## Example

` + "```" + `markdown
---
title: Deployment runbook
author_keys:
  - [ff8081816e50ba3a016e51, SRE]
---

# Deployment runbook

~!
Always snapshot the database before rolling out.
!~

See the [architecture overview](../architecture/overview.md) first.

![deploy pipeline](images/pipeline.png)
` + "```" + `
`
