package compiler_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/midbel/xslt3c/compiler"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCompileFileSimpleStylesheet(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.xsl", `<?xml version="1.0"?>
<xsl:stylesheet xmlns:xsl="http://www.w3.org/1999/XSL/Transform" version="3.0">
  <xsl:output method="html" encoding="UTF-8"/>
  <xsl:template match="/" name="root-template" priority="1">
    <xsl:param name="greeting" select="'hi'"/>
  </xsl:template>
  <xsl:variable name="count" select="1"/>
</xsl:stylesheet>`)

	sheet, err := compiler.New().CompileFile(path)
	require.NoError(t, err)
	require.Equal(t, "3.0", sheet.Version())
	require.Len(t, sheet.Templates(), 1)
	require.Len(t, sheet.Variables(), 1)
	require.Equal(t, "html", sheet.Output().Method)
}

func TestCompileFileResolvesImport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.xsl", `<?xml version="1.0"?>
<xsl:stylesheet xmlns:xsl="http://www.w3.org/1999/XSL/Transform" version="3.0">
  <xsl:template match="para" name="base-template"/>
</xsl:stylesheet>`)
	main := writeFile(t, dir, "main.xsl", `<?xml version="1.0"?>
<xsl:stylesheet xmlns:xsl="http://www.w3.org/1999/XSL/Transform" version="3.0">
  <xsl:import href="base.xsl"/>
  <xsl:template match="doc" name="main-template"/>
</xsl:stylesheet>`)

	sheet, err := compiler.New().CompileFile(main)
	require.NoError(t, err)
	require.Len(t, sheet.Templates(), 2)
}

func TestCompileFileRejectsUnrecognizedRoot(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.xsl", `<?xml version="1.0"?><root/>`)

	_, err := compiler.New().CompileFile(path)
	require.Error(t, err)
}

func TestCompilePackageFileReportsPackageIdentity(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "lib.xsl", `<?xml version="1.0"?>
<xsl:package xmlns:xsl="http://www.w3.org/1999/XSL/Transform" version="3.0" name="http://example.com/lib" package-version="1.0.0">
  <xsl:template match="/" name="entry" visibility="public"/>
</xsl:package>`)

	sheet, isPackage, name, version, err := compiler.New().CompilePackageFile(path)
	require.NoError(t, err)
	require.True(t, isPackage)
	require.Equal(t, "http://example.com/lib", name)
	require.Equal(t, "1.0.0", version)
	require.Len(t, sheet.Templates(), 1)
}
