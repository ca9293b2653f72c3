package http

import nethttp "net/http"

func dashboardHandler(w nethttp.ResponseWriter, r *nethttp.Request) {
	if r.URL.Path != "/" {
		nethttp.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(nethttp.StatusOK)
	_, _ = w.Write([]byte(dashboardHTML))
}

func faviconHandler(w nethttp.ResponseWriter, _ *nethttp.Request) {
	w.WriteHeader(nethttp.StatusNoContent)
}

const dashboardHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Predictive Maintenance Dashboard</title>
  <style>
    :root {
      --blue: #0e5d8f;
      --blue-2: #0971b2;
      --bg: #f7f7f7;
      --paper: #fff;
      --text: #333;
      --muted: #777;
      --line: #ddd;
      --line-soft: #eee;
      --head: #f0f0f0;
      --ok-bg: #dff0d8;
      --ok-text: #3c763d;
      --warn-bg: #fcf8e3;
      --warn-text: #8a6d3b;
      --bad-bg: #f2dede;
      --bad-text: #a94442;
    }

    * { box-sizing: border-box; }

    body {
      margin: 0;
      background: var(--bg);
      color: var(--text);
      font-family: "Helvetica Neue", Helvetica, Arial, sans-serif;
      font-size: 14px;
      line-height: 1.42857143;
    }

    a { color: #428bca; text-decoration: none; }
    a:hover { color: #2a6496; text-decoration: underline; }

    header {
      background: linear-gradient(to right, var(--blue) 0, var(--blue-2) 100%);
      border-bottom: 1px solid #0b4e79;
      box-shadow: 0 2px 5px rgba(0, 0, 0, 0.15);
    }

    .container {
      margin: 0 auto;
      padding: 0 15px;
      width: 100%;
      max-width: 1480px;
    }

    .header-inner {
      min-height: 64px;
      display: flex;
      align-items: center;
      justify-content: space-between;
      gap: 16px;
    }

    .brand { color: #fff; font-size: 21px; font-weight: 300; }
    .brand strong { font-weight: 600; }
    .brand-note { color: rgba(255, 255, 255, 0.88); font-size: 13px; text-align: right; }

    main { padding: 18px 0 32px; }

    .layout { display: grid; grid-template-columns: 260px 1fr; gap: 16px; }

    .panel {
      background: var(--paper);
      border: 1px solid var(--line);
      border-radius: 4px;
      padding: 12px 14px;
      margin-bottom: 14px;
    }
    .panel h2 { font-size: 15px; margin: 0 0 10px; color: var(--blue); }
    .panel h3 { font-size: 13px; margin: 12px 0 6px; color: var(--muted); text-transform: uppercase; }

    .sidebar label { display: block; margin: 10px 0 4px; font-weight: 600; font-size: 13px; }
    .sidebar select, .sidebar input[type="number"], .sidebar input[type="text"] {
      width: 100%;
      padding: 5px 6px;
      border: 1px solid var(--line);
      border-radius: 3px;
      font-size: 13px;
    }
    .sidebar select[multiple] { height: 120px; }
    .range-row { display: flex; gap: 6px; }
    .check-row { display: flex; align-items: center; gap: 6px; margin: 8px 0; }
    .check-row label { display: inline; margin: 0; font-weight: 400; }

    .btn {
      display: inline-block;
      border: 1px solid #c7d7e5;
      background: #eaf2f8;
      color: var(--blue);
      border-radius: 3px;
      padding: 6px 10px;
      font-size: 13px;
      cursor: pointer;
    }
    .btn:hover { background: #ddebf5; }
    .btn-block { width: 100%; margin-top: 8px; text-align: center; }

    .kpis { display: grid; grid-template-columns: repeat(4, 1fr); gap: 12px; margin-bottom: 14px; }
    .kpi {
      background: var(--paper);
      border: 1px solid var(--line);
      border-radius: 4px;
      padding: 12px 14px;
    }
    .kpi .label { color: var(--muted); font-size: 12px; text-transform: uppercase; }
    .kpi .value { font-size: 26px; font-weight: 600; margin-top: 2px; }

    .cols { display: grid; grid-template-columns: 2fr 1fr; gap: 16px; }

    table { width: 100%; border-collapse: collapse; font-size: 13px; }
    th, td { text-align: left; padding: 6px 8px; border-bottom: 1px solid var(--line-soft); }
    th { background: var(--head); font-weight: 600; }
    tr.row-click { cursor: pointer; }
    tr.row-click:hover td { background: #f2f8fc; }
    tr.row-selected td { background: #e2eff8; }
    .scroll { max-height: 420px; overflow-y: auto; }

    .pill {
      display: inline-block;
      border-radius: 10px;
      padding: 1px 9px;
      font-size: 12px;
    }
    .pill.ok { background: var(--ok-bg); color: var(--ok-text); }
    .pill.warn { background: var(--warn-bg); color: var(--warn-text); }
    .pill.bad { background: var(--bad-bg); color: var(--bad-text); }

    .banner { border-radius: 4px; padding: 10px 12px; margin-bottom: 12px; font-size: 13px; }
    .banner.ok { background: var(--ok-bg); color: var(--ok-text); }
    .banner.warn { background: var(--warn-bg); color: var(--warn-text); }
    .banner.bad { background: var(--bad-bg); color: var(--bad-text); }

    .asset-cards { display: grid; grid-template-columns: repeat(4, 1fr); gap: 12px; margin-bottom: 12px; }

    canvas { background: #fff; border: 1px solid var(--line-soft); border-radius: 3px; max-width: 100%; }
    .hint { color: var(--muted); font-size: 12px; margin-top: 4px; }
    .mono { font-family: SFMono-Regular, Consolas, Menlo, monospace; font-size: 12px; }
  </style>
</head>
<body>
  <header>
    <div class="container header-inner">
      <div class="brand"><strong>Predictive Maintenance</strong> Fleet Dashboard</div>
      <div class="brand-note" id="refresh-note">Auto-refresh off</div>
    </div>
  </header>

  <main>
    <div class="container layout">
      <aside class="sidebar">
        <div class="panel">
          <h2>Controls</h2>

          <div class="check-row">
            <input type="checkbox" id="auto-refresh" />
            <label for="auto-refresh">Auto-refresh (every 5 min)</label>
          </div>

          <label for="bucket-filter">Risk bucket</label>
          <select id="bucket-filter" multiple></select>

          <label>Predicted RUL (days)</label>
          <div class="range-row">
            <input type="number" id="rul-min" step="any" />
            <input type="number" id="rul-max" step="any" />
          </div>

          <button class="btn btn-block" id="apply-filter">Apply filters</button>
          <button class="btn btn-block" id="download-csv">Download filtered snapshot (CSV)</button>
        </div>

        <div class="panel" id="views-panel">
          <h2>Saved views</h2>
          <select id="views-select"></select>
          <input type="text" id="view-name" placeholder="View name" style="margin-top:8px" />
          <button class="btn btn-block" id="view-save">Save current filters</button>
          <button class="btn btn-block" id="view-load">Load selected</button>
          <button class="btn btn-block" id="view-delete">Delete selected</button>
          <div class="hint" id="views-hint"></div>
        </div>
      </aside>

      <section>
        <div class="kpis">
          <div class="kpi"><div class="label">Assets Monitored</div><div class="value" id="kpi-assets">-</div></div>
          <div class="kpi"><div class="label">High Risk (RED)</div><div class="value" id="kpi-red">-</div></div>
          <div class="kpi"><div class="label">Avg Predicted RUL (days)</div><div class="value" id="kpi-avg-rul">-</div></div>
          <div class="kpi"><div class="label">Assets in View</div><div class="value" id="kpi-in-view">-</div></div>
        </div>

        <div class="cols">
          <div class="panel">
            <h2>Fleet Risk Ranking (Filtered View)</h2>
            <div class="scroll">
              <table>
                <thead><tr><th>Asset</th><th>Predicted RUL</th><th>Risk Bucket</th><th>RMS</th><th>Kurtosis</th><th>Fault Energy</th></tr></thead>
                <tbody id="ranking-body"></tbody>
              </table>
            </div>
          </div>
          <div>
            <div class="panel">
              <h2>Top 10 Most Urgent</h2>
              <table>
                <thead><tr><th>Asset</th><th>RUL</th><th>Bucket</th></tr></thead>
                <tbody id="top-body"></tbody>
              </table>
              <div class="hint">Ranked over the full fleet, independent of filters.</div>
            </div>
            <div class="panel">
              <h2>Risk Bucket Counts</h2>
              <table>
                <thead><tr><th>Bucket</th><th>Rows</th></tr></thead>
                <tbody id="bucket-counts-body"></tbody>
              </table>
            </div>
          </div>
        </div>

        <div class="panel">
          <h2>Asset Drill-Down</h2>
          <label for="asset-select" style="font-weight:600">Select asset</label>
          <select id="asset-select" style="margin:6px 0 12px; padding:5px 6px;"></select>

          <div id="advisory" class="banner ok" style="display:none"></div>

          <div class="asset-cards" id="asset-cards" style="display:none">
            <div class="kpi"><div class="label">Risk Bucket</div><div class="value" id="card-bucket" style="font-size:16px">-</div></div>
            <div class="kpi"><div class="label">Predicted RUL (days)</div><div class="value" id="card-rul">-</div></div>
            <div class="kpi"><div class="label">RMS</div><div class="value" id="card-rms">-</div></div>
            <div class="kpi"><div class="label">Kurtosis</div><div class="value" id="card-kurt">-</div></div>
          </div>

          <div class="check-row">
            <input type="checkbox" id="show-rms" /><label for="show-rms">Show RMS trend</label>
            <input type="checkbox" id="show-kurt" /><label for="show-kurt">Show Kurtosis trend</label>
            <input type="checkbox" id="show-smooth" checked /><label for="show-smooth">Show 7-day rolling average</label>
          </div>

          <div id="history-message" class="banner warn" style="display:none"></div>
          <canvas id="trend-chart" width="980" height="360"></canvas>
          <div class="hint">Server-rendered copy: <a id="chart-png-link" href="#" target="_blank">chart.png</a></div>
        </div>
      </section>
    </div>
  </main>

  <script>
    const q = (sel) => document.querySelector(sel);

    let displaySettings = { refresh_interval_sec: 300, smoothing_window: 7 };
    let fleetOptions = null;
    let currentAsset = '';
    let historyCache = {};
    let refreshTimer = null;

    async function getJSON(url) {
      const r = await fetch(url);
      const body = await r.json();
      if (!r.ok) {
        const err = new Error(body.error || ('request failed: ' + r.status));
        err.status = r.status;
        throw err;
      }
      return body;
    }

    function fmtNum(v, digits) {
      if (v === null || v === undefined || Number.isNaN(v)) return '-';
      return Number(v).toFixed(digits === undefined ? 2 : digits);
    }

    function selectedBuckets() {
      return Array.from(q('#bucket-filter').selectedOptions).map(o => o.value);
    }

    function filterQuery() {
      const params = new URLSearchParams();
      params.set('buckets', selectedBuckets().join(','));
      const lo = q('#rul-min').value, hi = q('#rul-max').value;
      if (lo !== '') params.set('rul_min', lo);
      if (hi !== '') params.set('rul_max', hi);
      return params.toString();
    }

    function bucketPillClass(bucket) {
      const b = String(bucket).toUpperCase();
      if (b.indexOf('RED') >= 0) return 'bad';
      if (b.indexOf('AMBER') >= 0 || b.indexOf('YELLOW') >= 0 || b.indexOf('PLAN') >= 0) return 'warn';
      return 'ok';
    }

    async function loadOptions() {
      const res = await getJSON('/api/v1/fleet/options');
      fleetOptions = res.data;

      const sel = q('#bucket-filter');
      const previous = new Set(selectedBuckets());
      sel.innerHTML = '';
      (fleetOptions.buckets || []).forEach(b => {
        const opt = document.createElement('option');
        opt.value = b;
        opt.textContent = b;
        opt.selected = previous.size === 0 || previous.has(b);
        sel.appendChild(opt);
      });

      if (q('#rul-min').value === '') q('#rul-min').value = fleetOptions.rul_min;
      if (q('#rul-max').value === '') q('#rul-max').value = fleetOptions.rul_max;

      const assetSel = q('#asset-select');
      const prevAsset = assetSel.value;
      assetSel.innerHTML = '';
      (fleetOptions.assets || []).forEach(a => {
        const opt = document.createElement('option');
        opt.value = a;
        opt.textContent = a;
        assetSel.appendChild(opt);
      });
      if (prevAsset && (fleetOptions.assets || []).indexOf(prevAsset) >= 0) {
        assetSel.value = prevAsset;
      }
    }

    async function redrawFleet() {
      const qs = filterQuery();
      const [kpis, ranking, top] = await Promise.all([
        getJSON('/api/v1/fleet/kpis?' + qs),
        getJSON('/api/v1/fleet/ranking?' + qs),
        getJSON('/api/v1/fleet/top'),
      ]);

      q('#kpi-assets').textContent = kpis.data.assets_monitored;
      q('#kpi-red').textContent = kpis.data.high_risk_red;
      q('#kpi-avg-rul').textContent = kpis.data.avg_predicted_rul.toFixed(1);
      q('#kpi-in-view').textContent = kpis.data.assets_in_view;

      const bc = q('#bucket-counts-body');
      bc.innerHTML = '';
      (kpis.data.bucket_counts || []).forEach(it => {
        const tr = document.createElement('tr');
        tr.innerHTML = '<td><span class="pill ' + bucketPillClass(it.bucket) + '">' + it.bucket + '</span></td><td>' + it.count + '</td>';
        bc.appendChild(tr);
      });

      const rb = q('#ranking-body');
      rb.innerHTML = '';
      (ranking.data || []).forEach(r => {
        const tr = document.createElement('tr');
        tr.className = 'row-click';
        tr.innerHTML =
          '<td class="mono">' + r.asset_id + '</td>' +
          '<td>' + fmtNum(r.predicted_rul, 1) + '</td>' +
          '<td><span class="pill ' + bucketPillClass(r.risk_bucket) + '">' + r.risk_bucket + '</span></td>' +
          '<td>' + fmtNum(r.rms) + '</td>' +
          '<td>' + fmtNum(r.kurtosis) + '</td>' +
          '<td>' + fmtNum(r.fault_energy) + '</td>';
        tr.onclick = () => {
          q('#asset-select').value = r.asset_id;
          loadAsset(r.asset_id, false);
        };
        rb.appendChild(tr);
      });
      if (!rb.children.length) rb.innerHTML = '<tr><td colspan="6">No rows match the current filters.</td></tr>';

      const tb = q('#top-body');
      tb.innerHTML = '';
      (top.data || []).forEach(r => {
        const tr = document.createElement('tr');
        tr.innerHTML =
          '<td class="mono">' + r.asset_id + '</td>' +
          '<td>' + fmtNum(r.predicted_rul, 1) + '</td>' +
          '<td><span class="pill ' + bucketPillClass(r.risk_bucket) + '">' + r.risk_bucket + '</span></td>';
        tb.appendChild(tr);
      });
    }

    async function loadAsset(assetID, useCache) {
      currentAsset = assetID;
      if (!assetID) return;

      const advisory = q('#advisory');
      const cards = q('#asset-cards');
      try {
        const res = await getJSON('/api/v1/assets/' + encodeURIComponent(assetID) + '/summary');
        const cls = res.data.action === 'urgent' ? 'bad' : (res.data.action === 'planned' ? 'warn' : 'ok');
        advisory.className = 'banner ' + cls;
        advisory.textContent = res.data.advisory;
        advisory.style.display = '';

        cards.style.display = '';
        q('#card-bucket').textContent = res.data.asset.risk_bucket;
        q('#card-rul').textContent = fmtNum(res.data.asset.predicted_rul, 1);
        q('#card-rms').textContent = fmtNum(res.data.asset.rms);
        q('#card-kurt').textContent = fmtNum(res.data.asset.kurtosis);
      } catch (err) {
        advisory.className = 'banner warn';
        advisory.textContent = err.message;
        advisory.style.display = '';
        cards.style.display = 'none';
      }

      if (!useCache || !historyCache[assetID]) {
        try {
          const res = await getJSON('/api/v1/assets/' + encodeURIComponent(assetID) + '/history');
          historyCache[assetID] = res.data;
        } catch (err) {
          historyCache[assetID] = { error: err.message };
        }
      }
      drawTrend();
    }

    // Overlay checkboxes only trigger a redraw from the cached series; the
    // base history is never refetched or recomputed for a toggle.
    function drawTrend() {
      const canvas = q('#trend-chart');
      const msg = q('#history-message');
      const hist = historyCache[currentAsset];

      if (!hist || hist.error) {
        canvas.style.display = 'none';
        msg.textContent = hist ? hist.error : 'No historical data loaded.';
        msg.style.display = '';
        q('#chart-png-link').style.display = 'none';
        return;
      }
      canvas.style.display = '';
      msg.style.display = 'none';

      const png = q('#chart-png-link');
      png.style.display = '';
      png.href = '/api/v1/assets/' + encodeURIComponent(currentAsset) + '/chart.png'
        + '?rms=' + (q('#show-rms').checked ? '1' : '0')
        + '&kurtosis=' + (q('#show-kurt').checked ? '1' : '0')
        + '&smooth=' + (q('#show-smooth').checked ? '1' : '0');

      const points = hist.points || [];
      const series = [];
      const base = points.map(p => ({ x: p.day, y: p.fault_energy }));
      series.push({ label: 'Fault_Energy', color: '#0e5d8f', width: 2, points: base });

      if (q('#show-smooth').checked && hist.smoothed) {
        const sm = [];
        hist.smoothed.forEach((v, i) => {
          if (v !== null && v !== undefined) sm.push({ x: points[i].day, y: v });
        });
        series.push({ label: 'Fault_Energy (7-day avg)', color: '#cb4b16', width: 2, points: sm });
      }
      if (q('#show-rms').checked && hist.has_rms) {
        series.push({ label: 'RMS', color: '#2aa198', width: 1.5, points: points.map(p => ({ x: p.day, y: p.rms })) });
      }
      if (q('#show-kurt').checked && hist.has_kurtosis) {
        series.push({ label: 'Kurtosis', color: '#6c71c4', width: 1.5, points: points.map(p => ({ x: p.day, y: p.kurtosis })) });
      }

      drawSeries(canvas, series, hist.failure_day);
    }

    function drawSeries(canvas, series, failureDay) {
      const c = canvas.getContext('2d');
      const w = canvas.width, h = canvas.height;
      c.clearRect(0, 0, w, h);
      c.fillStyle = '#fff';
      c.fillRect(0, 0, w, h);

      const pad = 36;
      let xs = [], ys = [];
      series.forEach(s => s.points.forEach(p => {
        if (Number.isFinite(p.x) && Number.isFinite(p.y)) { xs.push(p.x); ys.push(p.y); }
      }));
      if (Number.isFinite(failureDay)) xs.push(failureDay);
      if (!xs.length) return;

      const minX = Math.min(...xs), maxX = Math.max(...xs);
      const minY = Math.min(0, ...ys), maxY = Math.max(1, ...ys);
      const sx = (x) => pad + ((w - pad * 2) * (maxX === minX ? 0 : (x - minX) / (maxX - minX)));
      const sy = (y) => h - pad - ((h - pad * 2) * (y - minY) / (maxY - minY));

      c.strokeStyle = '#eee';
      for (let i = 0; i < 4; i++) {
        const y = pad + ((h - pad * 2) * i / 3);
        c.beginPath(); c.moveTo(pad, y); c.lineTo(w - pad, y); c.stroke();
      }

      series.forEach(s => {
        const pts = s.points.filter(p => Number.isFinite(p.x) && Number.isFinite(p.y));
        if (!pts.length) return;
        c.strokeStyle = s.color;
        c.lineWidth = s.width;
        c.beginPath();
        pts.forEach((p, i) => {
          if (i === 0) c.moveTo(sx(p.x), sy(p.y)); else c.lineTo(sx(p.x), sy(p.y));
        });
        c.stroke();
      });

      if (Number.isFinite(failureDay)) {
        const x = sx(failureDay);
        c.strokeStyle = '#a94442';
        c.setLineDash([5, 4]);
        c.beginPath(); c.moveTo(x, pad); c.lineTo(x, h - pad); c.stroke();
        c.setLineDash([]);
        c.save();
        c.translate(x - 4, pad + 8);
        c.rotate(-Math.PI / 2);
        c.fillStyle = '#a94442';
        c.font = '11px sans-serif';
        c.textAlign = 'right';
        c.fillText('failure_day', 0, 0);
        c.restore();
      }

      let lx = pad + 8;
      series.forEach(s => {
        c.fillStyle = s.color;
        c.fillRect(lx, 8, 10, 10);
        c.fillStyle = '#333';
        c.font = '12px sans-serif';
        c.textAlign = 'left';
        c.fillText(s.label, lx + 14, 17);
        lx += 14 + c.measureText(s.label).width + 18;
      });
    }

    async function loadViews() {
      const sel = q('#views-select');
      try {
        const res = await getJSON('/api/v1/views');
        sel.innerHTML = '';
        (res.data || []).forEach(v => {
          const opt = document.createElement('option');
          opt.value = v.id;
          opt.textContent = v.name;
          opt.dataset.filter = JSON.stringify(v.filter);
          sel.appendChild(opt);
        });
        q('#views-hint').textContent = '';
      } catch (err) {
        q('#views-panel').style.opacity = 0.6;
        q('#views-hint').textContent = err.message;
      }
    }

    async function saveView() {
      const name = q('#view-name').value.trim();
      if (!name) { q('#views-hint').textContent = 'View name is required.'; return; }
      const body = {
        name: name,
        filter: {
          buckets: selectedBuckets(),
          rul_min: Number(q('#rul-min').value),
          rul_max: Number(q('#rul-max').value),
        },
      };
      try {
        const r = await fetch('/api/v1/views', {
          method: 'POST',
          headers: { 'Content-Type': 'application/json' },
          body: JSON.stringify(body),
        });
        const res = await r.json();
        if (!r.ok) throw new Error(res.error || 'save failed');
        q('#views-hint').textContent = 'Saved "' + name + '".';
        await loadViews();
      } catch (err) {
        q('#views-hint').textContent = err.message;
      }
    }

    function loadSelectedView() {
      const opt = q('#views-select').selectedOptions[0];
      if (!opt) return;
      const filter = JSON.parse(opt.dataset.filter || '{}');
      Array.from(q('#bucket-filter').options).forEach(o => {
        o.selected = (filter.buckets || []).indexOf(o.value) >= 0;
      });
      if (filter.rul_min !== undefined) q('#rul-min').value = filter.rul_min;
      if (filter.rul_max !== undefined) q('#rul-max').value = filter.rul_max;
      redrawFleet();
    }

    async function deleteSelectedView() {
      const opt = q('#views-select').selectedOptions[0];
      if (!opt) return;
      try {
        const r = await fetch('/api/v1/views/' + encodeURIComponent(opt.value), { method: 'DELETE' });
        if (!r.ok) throw new Error('delete failed');
        await loadViews();
      } catch (err) {
        q('#views-hint').textContent = err.message;
      }
    }

    // Full pipeline: re-read options, fleet tables and the selected asset.
    async function renderAll() {
      try {
        await loadOptions();
        await redrawFleet();
        const asset = q('#asset-select').value;
        if (asset) await loadAsset(asset, false);
      } catch (err) {
        console.error(err);
      }
    }

    function applyAutoRefresh() {
      const on = q('#auto-refresh').checked;
      if (refreshTimer) { clearInterval(refreshTimer); refreshTimer = null; }
      if (on) {
        const sec = displaySettings.refresh_interval_sec || 300;
        refreshTimer = setInterval(renderAll, sec * 1000);
        q('#refresh-note').textContent = 'Auto-refresh every ' + Math.round(sec / 60) + ' min';
      } else {
        q('#refresh-note').textContent = 'Auto-refresh off';
      }
    }

    q('#apply-filter').addEventListener('click', () => redrawFleet().catch(console.error));
    q('#download-csv').addEventListener('click', () => {
      window.location.href = '/api/v1/fleet/export?' + filterQuery();
    });
    q('#asset-select').addEventListener('change', () => loadAsset(q('#asset-select').value, true));
    q('#show-rms').addEventListener('change', drawTrend);
    q('#show-kurt').addEventListener('change', drawTrend);
    q('#show-smooth').addEventListener('change', drawTrend);
    q('#auto-refresh').addEventListener('change', applyAutoRefresh);
    q('#view-save').addEventListener('click', saveView);
    q('#view-load').addEventListener('click', loadSelectedView);
    q('#view-delete').addEventListener('click', deleteSelectedView);

    getJSON('/api/v1/settings/display')
      .then(res => { displaySettings = res.data; })
      .catch(() => {})
      .finally(() => {
        loadViews();
        renderAll().then(() => {
          const first = q('#asset-select').value;
          if (first) loadAsset(first, true);
        });
      });
  </script>
</body>
</html>`
