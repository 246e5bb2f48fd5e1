package mcpserver

// RecordFormatContract describes the note record format accepted by the
// create_note and update_note tools, and the query syntax of search_notes.
const RecordFormatContract = `# Note Record Format

Every record passed to create_note or update_note is a block of markup
terminated by the literal ` + "`</note>`" + `.

## Structure

` + "```" + `xml
<note>
  <guid>6f1c2a</guid>                     <!-- REQUIRED, trimmed -->
  <created>2023-01-02T10:20:30</created>  <!-- REQUIRED, UTC, yyyy-MM-ddTHH:mm:ss -->
  <tag>Work</tag>                         <!-- zero or more -->
  <tag>meeting-notes</tag>
  <content>Hello world, it's R&D day.</content>
</note>
` + "```" + `

## Rules

1. Only the first ` + "`<guid>`" + `, ` + "`<created>`" + ` and ` + "`<content>`" + ` elements are read. Every ` + "`<tag>`" + ` is read.
2. Tags are trimmed and lowercased. Empty tags are dropped and duplicates collapse.
3. Content is lowercased and split on every character other than ASCII
   letters, digits, ` + "`_`" + `, ` + "`'`" + ` and ` + "`&`" + `. Empty tokens are dropped and duplicates collapse.
4. A record without guid or created is rejected. A record without content is
   indexed by tags and date only.
5. create_note fails when the guid already exists (unless the server runs with
   ` + "`index.duplicate_policy: replace`" + `). update_note fails when it does not.
6. delete_note hides the guid from every later search, including after an
   update_note for the same guid.

## Queries

Terms are separated by whitespace and combined with AND. Matching is
case-insensitive.

| Term | Matches |
|---|---|
| ` + "`hello`" + ` | notes whose content contains the word |
| ` + "`hel*`" + ` | notes with a content word starting with ` + "`hel`" + ` |
| ` + "`tag:work`" + ` | notes tagged ` + "`work`" + ` |
| ` + "`tag:wo*`" + ` | notes with a tag starting with ` + "`wo`" + ` |
| ` + "`created:20230101`" + ` | notes created on or after 2023-01-01 (UTC) |

Results are ordered by creation time, then guid.
`
