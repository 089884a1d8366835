package cli

const rootLong = `contentlake stores JSON documents and selects them with GROQ filters.

Settings come from --config, then CONTENTLAKE_* environment variables
(CONTENTLAKE_SQLITE_PATH sets sqlite.path), then command line flags.

EXAMPLES
  contentlake parse '*[_type == "post" && defined(slug)]'
  contentlake eval --doc '{"_type":"post"}' '_type == "post"'
  contentlake dataset -d production create
  contentlake dataset -d production put '{"_id":"p1","_type":"post"}'
  contentlake dataset -d production query '_type == $t' --params '{"t":"post"}'`
