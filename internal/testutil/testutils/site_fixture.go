package helpers

import (
	"os"
	"path/filepath"
	"testing"
)

// Facts about the fixture written by WriteDoxygenSite.
const (
	FixtureChunkSize = 5
	FixtureNodes     = 16
	FixtureLinked    = 16
	FixtureEntries   = 17
	FixtureChunks    = 4
	FixtureTitle     = "DA16200 SDK"
)

const licenseHeader = `/*
 @licstart  The following is the entire license notice for the JavaScript code in this file.

 The MIT License (MIT)

 Copyright (C) 1997-2020 by Dimitri van Heesch

 @licend  The above is the entire license notice for the JavaScript code in this file
*/
`

var fixtureScripts = map[string]string{
	"navtreedata.js": licenseHeader + `var NAVTREE =
[
  [ "DA16200 SDK", "index.html", [
    [ "Applications", "applications.html", "applications" ],
    [ "Utilities", "utilities.html", "utilities" ],
    [ "Files", "files.html", [
      [ "File List", "files.html", "files_dup" ],
      [ "Globals", "globals.html", null ]
    ] ]
  ] ]
];

var NAVTREEINDEX =
[
"applications.html",
"coap__server_8h.html#a1f0c",
"index.html",
"utilities.html"
];

var SYNCONMSG = 'click to disable panel synchronisation';
var SYNCOFFMSG = 'click to enable panel synchronisation';
`,
	"applications.js": `var applications =
[
    [ "CoAP Client", "applications.html#coap_client", [
      [ "Build", "applications.html#coap_build", null ]
    ] ],
    [ "HTTP Client", "applications.html#http_client", null ]
];`,
	"utilities.js": `var utilities =
[
    [ "Ping", "utilities.html#ptim", null ]
];`,
	"files_dup.js": `var files_dup =
[
    [ "coap_server.h", "coap__server_8h.html", "coap__server_8h" ],
    [ "user_http_client.h", "user__http__client_8h.html", "user__http__client_8h" ]
];`,
	"coap__server_8h.js": `var coap__server_8h =
[
    [ "coap_server_start", "coap__server_8h.html#a1f0c", null ],
    [ "COAP_MAX", "coap__server_8h.html#a77aa", null ]
];`,
	"user__http__client_8h.js": `var user__http__client_8h =
[
    [ "HTTPC_DEF_TIMEOUT", "user__http__client_8h.html#a2e1f", null ],
    [ "http_client_conf", "user__http__client_8h.html#a0d3c", null ]
];`,
	"navtreeindex0.js": `var NAVTREEINDEX0 =
{
"applications.html":[0],
"applications.html#coap_build":[0,0,0],
"applications.html#coap_client":[0,0],
"applications.html#http_client":[0,1],
"coap__server_8h.html":[2,0,0]
};
`,
	"navtreeindex1.js": `var NAVTREEINDEX1 =
{
"coap__server_8h.html#a1f0c":[2,0,0,0],
"coap__server_8h.html#a77aa":[2,0,0,1],
"files.html":[2],
"files.html":[2,0],
"globals.html":[2,1]
};
`,
	"navtreeindex2.js": `var NAVTREEINDEX2 =
{
"index.html":[],
"pages.html":[],
"user__http__client_8h.html":[2,0,1],
"user__http__client_8h.html#a0d3c":[2,0,1,1],
"user__http__client_8h.html#a2e1f":[2,0,1,0]
};
`,
	"navtreeindex3.js": `var NAVTREEINDEX3 =
{
"utilities.html":[1],
"utilities.html#ptim":[1,0]
};
`,
}

var fixturePages = map[string]string{
	"index.html":        `<html><body><div class="contents">DA16200 SDK</div></body></html>`,
	"pages.html":        `<html><body><div class="contents">Related Pages</div></body></html>`,
	"files.html":        `<html><body><table class="directory"></table></body></html>`,
	"globals.html":      `<html><body><a id="index_c"></a></body></html>`,
	"applications.html": `<html><body><h1 id="coap_client">CoAP Client</h1><h2><a class="anchor" id="coap_build"></a>Build</h2><h1 id="http_client">HTTP Client</h1></body></html>`,
	"utilities.html":    `<html><body><h1><a name="ptim"></a>Ping</h1></body></html>`,
	"coap__server_8h.html": `<html><body>
<a id="a1f0c" name="a1f0c"></a><h2 class="memtitle">coap_server_start()</h2>
<a id="a77aa" name="a77aa"></a><h2 class="memtitle">COAP_MAX</h2>
</body></html>`,
	"user__http__client_8h.html": `<html><body>
<a id="a2e1f"></a><h2 class="memtitle">HTTPC_DEF_TIMEOUT</h2>
<a id="a0d3c"></a><h2 class="memtitle">http_client_conf</h2>
</body></html>`,
}

// WriteDoxygenSite writes a small Doxygen navigation data set with matching
// HTML pages into dir. Every href resolves and the stored index, written with
// a chunk size of FixtureChunkSize, matches the tree.
func WriteDoxygenSite(t *testing.T, dir string) string {
	t.Helper()
	for name, body := range fixtureScripts {
		WriteFile(t, dir, name, body)
	}
	for name, body := range fixturePages {
		WriteFile(t, dir, name, body)
	}
	return dir
}

// WriteFile writes content to dir/name, creating parent directories.
func WriteFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
