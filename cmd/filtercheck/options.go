package main

// Options represents filtercheck command line options
type Options struct {
	File      string `short:"f" long:"file" description:"filter or entity file (JSON or YAML), stdin when omitted"`
	Against   string `short:"b" long:"against" description:"second entity file, required in compare mode"`
	Mode      string `short:"m" long:"mode" choice:"global" choice:"entity" choice:"compare" default:"global" description:"what the input holds"`
	Format    string `long:"format" choice:"json" choice:"yaml" description:"input format, detected from the file extension when omitted"`
	Indent    bool   `short:"i" long:"indent" description:"indent the printed JSON"`
	CacheSize int    `long:"cache-size" default:"1024" description:"signature cache entries used in compare mode"`
	LogLevel  string `long:"log-level" default:"warn" description:"log level"`
}
