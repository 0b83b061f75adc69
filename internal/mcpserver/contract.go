package mcpserver

// ImageLinkContract describes how hosted image links are written into
// notes, for LLM consumers that create or edit note content.
const ImageLinkContract = `# Ansuz Image Link Contract

Images referenced by notes are uploaded to a WebDAV store and linked via
their public URL.

## Hosted link format

` + "```" + `markdown
![filename.png](https://cdn.example.com/images/filename.png)
![filename.png|300](https://cdn.example.com/images/filename.png)
` + "```" + `

- The alt text is always the uploaded file name.
- An optional ` + "`" + `|<width>` + "`" + ` after the alt text carries the display width
  and is preserved when a local reference is rewritten.

## Recognised local references

Both syntaxes below are found and rewritten by the upload tools:

` + "```" + `markdown
![[attachments/cat.png]]
![[attachments/cat.png|300]]
![cat](attachments/cat.png)
` + "```" + `

Remote references that already start with the configured public prefix
are left untouched; other http(s) references are re-hosted on batch runs.

## Rules

1. File names are sanitised: whitespace becomes hyphens, characters
   outside ` + "`" + `A-Z a-z 0-9 . _ -` + "`" + ` are dropped.
2. A name without an image extension gets ` + "`" + `.png` + "`" + ` appended.
3. Use the ` + "`" + `upload_image` + "`" + ` tool for new images; never write a hosted
   URL by hand.
4. Use ` + "`" + `upload_note_images` + "`" + ` to migrate an existing note.
`
